package processor

import (
	"fmt"

	"CrimeAnalytics/src/dataset"
)

// FailureReason 加载失败的原因
type FailureReason string

const (
	ReasonMissing    FailureReason = "missing"    // 文件不存在
	ReasonUnreadable FailureReason = "unreadable" // 没有权限或IO错误
	ReasonMalformed  FailureReason = "malformed"  // 不是合法的工作簿或缺少工作表
	ReasonEmpty      FailureReason = "empty"      // 没有标题行
)

// LoadFailure 整个数据集加载失败, 调用方拿到的表为nil
type LoadFailure struct {
	Kind   dataset.Kind
	Path   string
	Reason FailureReason
	Err    error
}

func (e *LoadFailure) Error() string {
	return fmt.Sprintf("load %s dataset from %s: %s: %v", e.Kind, e.Path, e.Reason, e.Err)
}

func (e *LoadFailure) Unwrap() error {
	return e.Err
}

// 单元格转换失败的原因
const (
	ReasonInvalidNumber     = "invalid number"
	ReasonInvalidDate       = "invalid date"
	ReasonInvalidTime       = "invalid time"
	ReasonUnknownTimeFormat = "unknown time format"
)

// CoercionWarning 单元格无法转换时置为null, 同时记录一条警告
type CoercionWarning struct {
	Column string `json:"column"`
	Row    int    `json:"row"`
	Token  string `json:"token"`
	Reason string `json:"reason"`
}

func (w CoercionWarning) String() string {
	return fmt.Sprintf("%s[%d] %q: %s", w.Column, w.Row, w.Token, w.Reason)
}
