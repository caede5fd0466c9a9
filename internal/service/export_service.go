package service

import (
	"context"
	"fmt"

	"ui-guide-go/internal/export"
)

// ExportFormat 是导出文件的格式。
type ExportFormat string

const (
	FormatMarkdown ExportFormat = "markdown"
	FormatHTML     ExportFormat = "html"
)

// Archiver 保存导出文件并返回下载链接。
type Archiver interface {
	Archive(ctx context.Context, fileName, contentType string, body []byte) (string, error)
}

// ExportOptions 控制导出格式以及是否归档。
type ExportOptions struct {
	Format  ExportFormat
	Archive bool
}

// ExportResult 是一次导出的结果。归档时 URL 为预签名下载地址。
type ExportResult struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Body        string `json:"-"`
	URL         string `json:"url,omitempty"`
}

// ExportService 把对话和指南导出为文档。
type ExportService interface {
	ExportConversation(ctx context.Context, id string, opts ExportOptions) (ExportResult, error)
	ExportGuide(ctx context.Context, id string, opts ExportOptions) (ExportResult, error)
}

type exportService struct {
	conversations ConversationService
	guides        GuideService
	archiver      Archiver
}

// NewExportService 创建一个新的 ExportService。archiver 为 nil 时不支持归档。
func NewExportService(conversations ConversationService, guides GuideService, archiver Archiver) ExportService {
	return &exportService{conversations: conversations, guides: guides, archiver: archiver}
}

func (s *exportService) ExportConversation(ctx context.Context, id string, opts ExportOptions) (ExportResult, error) {
	conv, err := s.conversations.Get(id)
	if err != nil {
		return ExportResult{}, err
	}
	return s.render(ctx, export.ConversationDocument(conv, nowFunc()), opts)
}

func (s *exportService) ExportGuide(ctx context.Context, id string, opts ExportOptions) (ExportResult, error) {
	g, err := s.guides.Get(id)
	if err != nil {
		return ExportResult{}, err
	}
	return s.render(ctx, export.GuideDocument(g, nowFunc()), opts)
}

func (s *exportService) render(ctx context.Context, doc export.Document, opts ExportOptions) (ExportResult, error) {
	if opts.Archive && s.archiver == nil {
		return ExportResult{}, ErrArchiveDisabled
	}

	markdown := doc.Markdown()
	var res ExportResult
	switch opts.Format {
	case "", FormatMarkdown:
		res = ExportResult{FileName: export.FileName(doc.Title, "md"), ContentType: "text/markdown; charset=utf-8", Body: markdown}
	case FormatHTML:
		html, err := export.RenderHTML(doc.Title, markdown)
		if err != nil {
			return ExportResult{}, err
		}
		res = ExportResult{FileName: export.FileName(doc.Title, "html"), ContentType: "text/html; charset=utf-8", Body: html}
	default:
		return ExportResult{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, opts.Format)
	}

	if opts.Archive {
		url, err := s.archiver.Archive(ctx, res.FileName, res.ContentType, []byte(res.Body))
		if err != nil {
			return ExportResult{}, fmt.Errorf("failed to archive export: %w", err)
		}
		res.URL = url
	}
	return res, nil
}
