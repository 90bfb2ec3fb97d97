package handler

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"resume-analyzer-go/internal/api/response"
	"resume-analyzer-go/internal/logger"
	"resume-analyzer-go/internal/processor"
	"resume-analyzer-go/internal/tracing"
)

// 返回给客户端的错误信息
const (
	msgMissingFile     = "No file uploaded. Send the CV in the multipart field \"file\"."
	msgInvalidRawFlag  = "include_raw_text must be a boolean"
	msgFileTooLarge    = "File too large. Maximum allowed size is %d MB."
	msgExtractFailed   = "Failed to extract text from document: "
	msgAnalyzeFailed   = "Failed to analyze CV: "
	msgUnexpectedError = "An unexpected error occurred"
)

// ResumeHandler 简历提取接口
type ResumeHandler struct {
	service       processor.ResumeService
	maxFileSizeMB int
}

// NewResumeHandler 创建简历提取处理器，maxFileSizeMB 为单个文件的大小上限
func NewResumeHandler(service processor.ResumeService, maxFileSizeMB int) *ResumeHandler {
	return &ResumeHandler{
		service:       service,
		maxFileSizeMB: maxFileSizeMB,
	}
}

func (h *ResumeHandler) maxFileSize() int64 {
	return int64(h.maxFileSizeMB) * 1024 * 1024
}

// ExtractResponse 提取成功的响应
type ExtractResponse struct {
	ExtractedData any `json:"extracted_data"`
}

// Extract 处理 POST /api/extract/：读取上传文件，执行提取与分析，返回结构化简历
func (h *ResumeHandler) Extract(c context.Context, ctx *app.RequestContext) {
	log := logger.Ctx(c)

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		response.AbortWithError(ctx, consts.StatusUnprocessableEntity, msgMissingFile, response.ErrorTypeValidation)
		return
	}

	includeRawText := false
	if raw := ctx.Query("include_raw_text"); raw != "" {
		includeRawText, err = strconv.ParseBool(raw)
		if err != nil {
			response.AbortWithError(ctx, consts.StatusUnprocessableEntity, msgInvalidRawFlag, response.ErrorTypeValidation)
			return
		}
	}

	if fileHeader.Size > h.maxFileSize() {
		log.Warn().
			Str("file", fileHeader.Filename).
			Int64("size_bytes", fileHeader.Size).
			Msg("上传文件超过大小限制")
		response.AbortWithError(ctx, consts.StatusBadRequest,
			fmt.Sprintf(msgFileTooLarge, h.maxFileSizeMB), response.ErrorTypeFileTooLarge)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error().Err(err).Str("file", fileHeader.Filename).Msg("打开上传文件失败")
		response.AbortWithError(ctx, consts.StatusInternalServerError, msgUnexpectedError, string(processor.KindUnexpected))
		return
	}
	defer file.Close()

	// 多读一个字节，防止声明大小与实际内容不一致
	content, err := io.ReadAll(io.LimitReader(file, h.maxFileSize()+1))
	if err != nil {
		log.Error().Err(err).Str("file", fileHeader.Filename).Msg("读取上传文件失败")
		response.AbortWithError(ctx, consts.StatusInternalServerError, msgUnexpectedError, string(processor.KindUnexpected))
		return
	}
	if int64(len(content)) > h.maxFileSize() {
		response.AbortWithError(ctx, consts.StatusBadRequest,
			fmt.Sprintf(msgFileTooLarge, h.maxFileSizeMB), response.ErrorTypeFileTooLarge)
		return
	}

	log.Info().
		Str("file", fileHeader.Filename).
		Int("size_bytes", len(content)).
		Bool("include_raw_text", includeRawText).
		Msg("开始处理简历")

	resume, err := h.service.Process(c, content, fileHeader.Filename, processor.AnalyzeOptions{
		IncludeRawText: includeRawText,
		RequestID:      response.RequestID(ctx),
	})
	if err != nil {
		h.writeProcessError(c, ctx, err)
		return
	}

	log.Info().
		Str("resume_id", resume.ID).
		Str("name", tracing.MaskPII(resume.FullName())).
		Int("experiences", len(resume.Experiences)).
		Int("trainings", len(resume.Trainings)).
		Msg("简历处理成功")

	ctx.JSON(consts.StatusOK, ExtractResponse{ExtractedData: resume})
}

// writeProcessError 将处理流程的错误类别映射为HTTP状态码
func (h *ResumeHandler) writeProcessError(c context.Context, ctx *app.RequestContext, err error) {
	kind := processor.KindOf(err)
	log := logger.Ctx(c)

	switch kind {
	case processor.KindUnsupportedFormat:
		log.Warn().Err(err).Msg("不支持的文件格式")
		response.AbortWithError(ctx, consts.StatusBadRequest, err.Error(), string(kind))
	case processor.KindExtraction:
		log.Warn().Err(err).Msg("文本提取失败")
		response.AbortWithError(ctx, consts.StatusUnprocessableEntity, msgExtractFailed+processor.DetailOf(err), string(kind))
	case processor.KindAnalysis:
		log.Error().Err(err).Msg("简历分析失败")
		response.AbortWithError(ctx, consts.StatusUnprocessableEntity, msgAnalyzeFailed+processor.DetailOf(err), string(kind))
	default:
		// 内部细节只进日志，不返回给客户端
		log.Error().Err(err).Msg("处理简历时发生未预期错误")
		response.AbortWithError(ctx, consts.StatusInternalServerError, msgUnexpectedError, string(processor.KindUnexpected))
	}
}

// SupportedFormats 返回当前可处理的文件扩展名
func (h *ResumeHandler) SupportedFormats(c context.Context, ctx *app.RequestContext) {
	exts := h.service.SupportedExtensions()
	if exts == nil {
		exts = []string{}
	}
	ctx.JSON(consts.StatusOK, utils.H{
		"supported_extensions": exts,
		"max_file_size_mb":     h.maxFileSizeMB,
	})
}
