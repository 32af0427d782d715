package model

// Detection 单个检测框
type Detection struct {
	Label      string     `json:"label"`      // 类别标签
	Confidence float64    `json:"confidence"` // 置信度 0~1
	Box        [4]float64 `json:"box"`        // xyxy 坐标
}

// DetectionResult 检测服务一次调用的完整返回
// 每次运行最多产生一个，原样透传给写回阶段
type DetectionResult struct {
	Detections     []Detection    `json:"detections"`
	Counts         map[string]int `json:"counts"`
	ImageWithBoxes string         `json:"image_with_boxes"` // 可选的 data-URL 标注图
}
