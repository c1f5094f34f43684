package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	xerrors "WebTool-Platform/internal/errors"
	"WebTool-Platform/internal/schema"
)

const (
	// CodeBadRequest 表示请求体不是合法的 JSON。
	CodeBadRequest xerrors.Code = "BAD_REQUEST"
	// CodePayloadTooLarge 表示请求体超过上限。
	CodePayloadTooLarge xerrors.Code = "PAYLOAD_TOO_LARGE"
)

var internalMessage = xerrors.AttributesOf(xerrors.CodeUnknown).Message

func init() {
	xerrors.Register(CodeBadRequest, xerrors.Attributes{Message: "malformed JSON request body", Severity: xerrors.SeverityInfo})
	xerrors.Register(CodePayloadTooLarge, xerrors.Attributes{Message: "request body too large", Severity: xerrors.SeverityInfo})
}

// decodeBody 限制请求体大小并解析 JSON。
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return xerrors.Wrap(CodePayloadTooLarge, err, "")
		}
		if errors.Is(err, io.EOF) {
			return xerrors.Wrap(CodeBadRequest, err, "request body is empty")
		}
		return xerrors.Wrap(CodeBadRequest, err, "")
	}
	return nil
}

// statusFor 将错误码映射为 HTTP 状态码。
func statusFor(code xerrors.Code) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case schema.CodeValidation, xerrors.CodeInvalidArgument:
		return http.StatusUnprocessableEntity
	case xerrors.CodeNotFound:
		return http.StatusNotFound
	case xerrors.CodeConflict:
		return http.StatusConflict
	case xerrors.CodeRateLimited:
		return http.StatusTooManyRequests
	case xerrors.CodeCanceled, xerrors.CodeUnavailable, xerrors.CodeInitializationFailure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError 输出统一错误体。响应只包含错误码的对外描述，底层原因只写入日志。
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := xerrors.CodeOf(err)
	status := statusFor(code)
	message := xerrors.MessageOf(err)
	if status == http.StatusInternalServerError {
		if _, ok := xerrors.From(err); !ok {
			message = internalMessage
		}
	}

	level := slog.LevelInfo
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.log.Log(r.Context(), level, "request failed",
		slog.String("path", r.URL.Path),
		slog.String("code", string(code)),
		slog.Int("status", status),
		slog.Any("error", err),
	)
	writeJSON(w, status, schema.Failure(message, xerrors.MetadataOf(err, "execution_id")))
}
