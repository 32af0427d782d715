package host

// 主机平台 API 的请求/响应结构
// 所有请求体都携带 ApiVersion 与 ApiKey

type authBody struct {
	APIVersion string `json:"ApiVersion"`
	APIKey     string `json:"ApiKey"`
}

// binaryGetResponse POST /api/binaries/<guid>/get 的响应
type binaryGetResponse struct {
	Response struct {
		Base64 string `json:"Base64"`
		Name   string `json:"Name"`
		Size   int64  `json:"Size"`
	} `json:"Response"`
}

// Binary 平台返回的二进制内容
type Binary struct {
	Content []byte
	Name    string
	Size    int64
}

// selectRequest POST /api/items/<collection>/select 的请求
// 按关联字段过滤并按创建时间升序排序
type selectRequest struct {
	authBody
	Filter map[string]string `json:"Filter"`
	Sort   []string          `json:"Sort"`
}

// ItemRef 查询结果中的一条记录引用
type ItemRef struct {
	ID string `json:"Id"`
}

type selectResponse struct {
	Response struct {
		Items  []ItemRef `json:"Items"`
		Length int       `json:"Length"`
	} `json:"Response"`
}

// insertRequest POST /api/items/<collection>/insert 的请求
type insertRequest struct {
	authBody
	Values map[string]string `json:"Values"`
}

type insertResponse struct {
	Response struct {
		ID string `json:"Id"`
	} `json:"Response"`
}

// ImageField 更新请求中单个图片字段的内容
type ImageField struct {
	HeadNewLine int    `json:"HeadNewLine"`
	EndNewLine  int    `json:"EndNewLine"`
	Position    int    `json:"Position"`
	Alt         string `json:"Alt"`
	Extension   string `json:"Extension"`
	Base64      string `json:"Base64"`
}

// UpdatePayload POST /api/items/<id>/update 的内容部分
type UpdatePayload struct {
	ImageHash map[string]ImageField `json:"ImageHash,omitempty"`
	TextHash  map[string]string     `json:"TextHash,omitempty"`
}

type updateRequest struct {
	authBody
	UpdatePayload
}
