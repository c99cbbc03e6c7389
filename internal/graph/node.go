package graph

import (
	"github.com/zheng/tsel/internal/diff"
)

// Decl represents one declared function as reported by the analyzer
type Decl struct {
	ID        string         `json:"id"`        // 完整限定名, e.g. (*pkg.Type).Method
	Package   string         `json:"package"`   // 包路径
	File      string         `json:"file"`      // repository-relative, forward slashes
	Range     diff.LineRange `json:"range"`     // 声明的行范围
	Signature string         `json:"signature"` // 函数签名
}

// DeclSource supplies the declared functions of a source snapshot
type DeclSource interface {
	Declarations() []Decl
}
