// Package offline 负责“只暴露本地已有版本”的核心逻辑：扫描包目录中的 tarball、
// 按配置决定 offline/online 模式、裁剪元数据中的 versions 并重算 dist-tags.latest，
// 以及在包列表请求中过滤掉没有任何本地 tarball 的目录。
//
// 所有变换都只发生在内存中，磁盘上的 package.json 永远不会被改写。底层存储通过
// Storage 接口注入，便于在测试中替换为内存文件系统。
package offline
