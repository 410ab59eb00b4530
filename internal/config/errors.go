package config

import "fmt"

// FieldError 指出出错的配置字段，Err 保留底层原因（如 URL 解析错误）。
type FieldError struct {
	Field  string
	Reason string
	Err    error
}

func (e FieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e FieldError) Unwrap() error {
	return e.Err
}

func newFieldError(field, reason string) error {
	return FieldError{Field: field, Reason: reason}
}

func wrapFieldError(field, reason string, err error) error {
	return FieldError{Field: field, Reason: reason, Err: err}
}

// sectionField 拼接数组段的字段路径，输出 Uplink[npmjs].URL / Package[@scope/*].Proxy 形式。
func sectionField(section, name, field string) string {
	return fmt.Sprintf("%s[%s].%s", section, name, field)
}
