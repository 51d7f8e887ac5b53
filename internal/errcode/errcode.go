package errcode

// 错误码约定：
// - 0：无错误
// - 4xxx：调用方可修正的错误（输入不合法、资源缺失）
// - 5xxx：系统错误（需要中断流程）
const (
	OK                  = 0
	ValidationFailed    = 4000
	ResourceMissing     = 4004
	SystemError         = 5000
	PDFGenerationFailed = 5001
)

// Message 返回错误码对应的对外文案。异步通知只携带这段固定文案，内部原因只写日志。
func Message(code int) string {
	switch code {
	case OK:
		return ""
	case ValidationFailed:
		return "invalid request"
	case ResourceMissing:
		return "resource not found"
	case PDFGenerationFailed:
		return "PDF generation failed"
	default:
		return "internal error"
	}
}
