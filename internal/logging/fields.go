package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// RequestFields 提供包名/模式/请求 ID 字段，供元数据请求日志复用。
func RequestFields(requestID, pkg, mode string, status int) logrus.Fields {
	return logrus.Fields{
		"request_id": requestID,
		"package":    pkg,
		"mode":       mode,
		"status":     status,
	}
}
