package model

// AttachmentSource 附件的来源位置
type AttachmentSource string

const (
	// SourceBody 表示附件引用来自记录正文
	SourceBody AttachmentSource = "body"
)

// Attachment 表示从记录正文中提取出来的一个二进制附件
// 仅在单次流水线运行内存活，不做持久化
type Attachment struct {
	ID          string           `json:"id"`          // 正文中匹配到的 GUID
	DisplayName string           `json:"displayName"` // 主机平台返回的文件名
	Source      AttachmentSource `json:"source"`      // 来源，目前只有 body
	Content     []byte           `json:"-"`           // 二进制内容
}

// AnnotatedImage 写回用的结果图片
// 由检测服务返回的 data-URL 解码得到，解码失败时回退为原始附件内容
type AnnotatedImage struct {
	Content   []byte `json:"-"`
	MIMEType  string `json:"mimeType"`
	Extension string `json:"extension"` // 统一为小写且带前导点，如 ".png"
	AltText   string `json:"altText"`
}

// ChildRecordRef 指向与父记录关联的子记录
type ChildRecordRef struct {
	ID string `json:"id"`
}
