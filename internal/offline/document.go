package offline

import (
	"bytes"
	"encoding/json"
	"sort"
)

const (
	fieldName     = "name"
	fieldVersions = "versions"
	fieldDistTags = "dist-tags"

	// LatestTag 是 npm 约定的默认 dist-tag。
	LatestTag = "latest"
)

// Document 是包元数据（package.json）的内存表示。除 versions 与 dist-tags 外，
// 其余顶层字段都以原始 JSON 保存，保证裁剪时原样透传。
//
// 由 ParseDocument 得到的文档保留原始字节，Bytes 会直接返回它们，
// 因此 online 模式下的响应与磁盘内容逐字节一致。
type Document struct {
	raw    []byte
	fields map[string]json.RawMessage
}

// ParseDocument 解析元数据 JSON，只要求顶层是一个对象。
func ParseDocument(data []byte) (*Document, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, malformed("", err.Error())
	}
	if fields == nil {
		return nil, malformed("", "document is not a JSON object")
	}
	return &Document{
		raw:    append([]byte(nil), data...),
		fields: fields,
	}, nil
}

// Name 返回文档中的 name 字段，缺失或类型不符时返回空字符串。
func (d *Document) Name() string {
	if d == nil {
		return ""
	}
	var name string
	if raw, ok := d.fields[fieldName]; ok {
		_ = json.Unmarshal(raw, &name)
	}
	return name
}

// Field 返回任意顶层字段的原始 JSON。
func (d *Document) Field(key string) (json.RawMessage, bool) {
	if d == nil {
		return nil, false
	}
	raw, ok := d.fields[key]
	return raw, ok
}

// Versions 解析 versions 对象，值保持为不透明的 manifest JSON。
func (d *Document) Versions() (map[string]json.RawMessage, error) {
	return d.objectField(fieldVersions)
}

// DistTags 解析 dist-tags 对象；值保持原始 JSON，非字符串 tag 也能透传。
func (d *Document) DistTags() (map[string]json.RawMessage, error) {
	return d.objectField(fieldDistTags)
}

// VersionKeys 返回按字典序排列的版本键，文档结构异常时返回 nil。
func (d *Document) VersionKeys() []string {
	versions, err := d.Versions()
	if err != nil {
		return nil
	}
	keys := make([]string, 0, len(versions))
	for key := range versions {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Latest 返回 dist-tags.latest；缺失或不是字符串时 ok 为 false。
func (d *Document) Latest() (string, bool) {
	tags, err := d.DistTags()
	if err != nil {
		return "", false
	}
	raw, ok := tags[LatestTag]
	if !ok {
		return "", false
	}
	var latest string
	if err := json.Unmarshal(raw, &latest); err != nil {
		return "", false
	}
	return latest, true
}

// Bytes 返回文档的 JSON 编码。解析所得且未被修改的文档直接返回原始字节，调用方不应修改返回值。
func (d *Document) Bytes() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	if d.raw != nil {
		return d.raw, nil
	}
	return json.Marshal(d.fields)
}

// MarshalJSON 使 Document 可以直接交给 encoding/json 或 Fiber 输出。
func (d *Document) MarshalJSON() ([]byte, error) {
	return d.Bytes()
}

func (d *Document) objectField(key string) (map[string]json.RawMessage, error) {
	if d == nil {
		return nil, malformed("", "document is nil")
	}
	raw, ok := d.fields[key]
	if !ok {
		return nil, malformed(key, "missing")
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, malformed(key, "not an object")
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, malformed(key, err.Error())
	}
	if out == nil {
		out = make(map[string]json.RawMessage)
	}
	return out, nil
}

// derive 复制顶层字段并丢弃原始字节，用于构造裁剪后的新文档。
func (d *Document) derive() *Document {
	fields := make(map[string]json.RawMessage, len(d.fields))
	for key, value := range d.fields {
		fields[key] = value
	}
	return &Document{fields: fields}
}
