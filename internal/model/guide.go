package model

import (
	"fmt"
	"time"
)

// Verbosity 控制请求回答的详细程度。
type Verbosity string

const (
	VerbosityConcise  Verbosity = "concise"
	VerbosityNormal   Verbosity = "normal"
	VerbosityDetailed Verbosity = "detailed"
)

// Verbosities 按展示顺序列出所有级别。
var Verbosities = []Verbosity{VerbosityConcise, VerbosityNormal, VerbosityDetailed}

// Valid 报告 v 是否为已知级别。
func (v Verbosity) Valid() bool {
	switch v {
	case VerbosityConcise, VerbosityNormal, VerbosityDetailed:
		return true
	}
	return false
}

// ParseVerbosity 将字符串解析为 Verbosity。
func ParseVerbosity(s string) (Verbosity, error) {
	v := Verbosity(s)
	if !v.Valid() {
		return "", fmt.Errorf("unknown verbosity %q", s)
	}
	return v, nil
}

// GuideStep 是解析出的一个步骤。
type GuideStep struct {
	Text    string `json:"text"`
	Why     string `json:"why"`
	Note    string `json:"note"`
	Warning string `json:"warning"`
}

// GuidanceStructure 是从 Markdown 回答中解析出的结构化指南。
type GuidanceStructure struct {
	Summary   string      `json:"summary"`
	Steps     []GuideStep `json:"steps"`
	Notes     []string    `json:"notes"`
	Warnings  []string    `json:"warnings"`
	NextSteps []string    `json:"nextSteps"`
	Raw       string      `json:"raw"`
}

// GuideInput 是引导表单提交的字段。
type GuideInput struct {
	Context       string    `json:"context"`
	Task          string    `json:"task"`
	UIDescription string    `json:"uiDescription,omitempty"`
	Constraints   string    `json:"constraints,omitempty"`
	Verbosity     Verbosity `json:"verbosity"`
}

// Guide 是一次表单提交生成的持久化指南。
type Guide struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Context   string            `json:"context"`
	Verbosity Verbosity         `json:"verbosity"`
	Response  string            `json:"response"`
	Parsed    GuidanceStructure `json:"parsed"`
	Sources   []Citation        `json:"sources"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Preferences 是跨会话保存的用户偏好。
type Preferences struct {
	Verbosity Verbosity `json:"verbosity"`
}

// DefaultPreferences 返回默认偏好。
func DefaultPreferences() Preferences {
	return Preferences{Verbosity: VerbosityNormal}
}
