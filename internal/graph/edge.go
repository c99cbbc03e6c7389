package graph

// CallEdge means Caller's body contains a statically resolved call to Callee.
// Only presence matters; call site fields are for diagnostics.
type CallEdge struct {
	Caller       string `json:"caller"`
	Callee       string `json:"callee"`
	CallSiteFile string `json:"call_site_file,omitempty"` // 调用发生的文件
	CallSiteLine int    `json:"call_site_line,omitempty"` // 调用发生的行号
}

// EdgeSource supplies the call edges of a source snapshot
type EdgeSource interface {
	CallEdges() []CallEdge
}
