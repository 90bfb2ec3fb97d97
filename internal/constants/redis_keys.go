package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// ResumeModulePrefix 简历模块
	ResumeModulePrefix = "resume"

	// EntityUploadRateLimit 上传限流窗口实体
	EntityUploadRateLimit = "upload_ratelimit"

	// KeyUploadRateLimit 按客户端的上传滑动窗口 (ZSET)
	// 格式: app:resume:upload_ratelimit:{clientID}
	KeyUploadRateLimit = AppPrefix + ":" + ResumeModulePrefix + ":" + EntityUploadRateLimit + ":%s"
)
