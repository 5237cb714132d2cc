package server

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"voxreel/internal/captions"
	"voxreel/internal/logging"
	"voxreel/internal/pipeline"
	"voxreel/internal/services"
)

// generateResponse is the body of POST /api/generate.
type generateResponse struct {
	Status     string   `json:"status"`
	Video      string   `json:"video,omitempty"`
	RunID      string   `json:"run_id,omitempty"`
	Background string   `json:"background,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"media_available": s.runner.MediaAvailable(),
		"busy":            s.snapshot().Running,
		"uptime_seconds":  int64(time.Since(s.startedAt).Seconds()),
	})
}

func (s *Server) handleProgress(c *gin.Context) {
	c.JSON(http.StatusOK, s.snapshot())
}

func (s *Server) handleGenerate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)
	if !s.runMu.TryLock() {
		c.JSON(http.StatusConflict, generateResponse{Status: "Error: a video is already being generated"})
		return
	}
	defer s.runMu.Unlock()

	uploadID := uuid.NewString()
	req, cleanup, err := s.parseRequest(c, uploadID)
	defer cleanup()
	if err != nil {
		c.JSON(http.StatusBadRequest, generateResponse{Status: services.StatusMessage(err)})
		return
	}

	s.update(func(st *progressState) {
		*st = progressState{Running: true, Label: "Starting"}
	})
	result, err := s.runner.Run(c.Request.Context(), req, func(p pipeline.Progress) {
		s.update(func(st *progressState) {
			st.Fraction = p.Fraction
			st.Label = p.Label
		})
	})
	if err != nil {
		status := pipeline.StatusMessage(err)
		s.update(func(st *progressState) {
			st.Running = false
			st.RunID = result.RunID
			st.Status = status
		})
		c.JSON(statusCode(err), generateResponse{Status: status, RunID: result.RunID})
		return
	}

	videoURL := "/api/videos/" + filepath.Base(result.VideoPath)
	s.update(func(st *progressState) {
		st.Running = false
		st.RunID = result.RunID
		st.Status = result.Status
		st.Video = videoURL
	})
	c.JSON(http.StatusOK, generateResponse{
		Status:     result.Status,
		Video:      videoURL,
		RunID:      result.RunID,
		Background: result.Background.Kind.String(),
		Keywords:   result.Background.Keywords,
	})
}

func (s *Server) handleVideo(c *gin.Context) {
	name := c.Param("name")
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), ".mp4") {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}
	path := filepath.Join(s.runner.OutputDir(), name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}
	c.File(path)
}

// parseRequest applies form fields over the configured defaults and stores
// uploads under the upload directory. cleanup removes the uploads.
func (s *Server) parseRequest(c *gin.Context, uploadID string) (pipeline.Request, func(), error) {
	var saved []string
	cleanup := func() {
		for _, p := range saved {
			_ = os.Remove(p)
		}
	}
	req := s.opts.Defaults
	invalid := func(msg string) error {
		return services.Wrap(services.ErrInput, "request", "", msg, nil)
	}

	req.Text = c.PostForm("text")
	if v := strings.TrimSpace(c.PostForm("language")); v != "" {
		req.Language = v
	}
	if v := strings.TrimSpace(c.PostForm("bg_color")); v != "" {
		req.BackgroundColor = v
	}
	if v := strings.TrimSpace(c.PostForm("subtitle_style")); v != "" {
		style, err := captions.ParseStyle(v)
		if err != nil {
			return req, cleanup, invalid(err.Error())
		}
		req.CaptionStyle = style
	}
	if v := strings.TrimSpace(c.PostForm("font_size")); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 8 || size > 200 {
			return req, cleanup, invalid(fmt.Sprintf("font_size must be an integer between 8 and 200 (got %q)", v))
		}
		req.Subtitles.FontSize = size
	}
	for field, dst := range map[string]*float64{"exaggeration": &req.Exaggeration, "cfg_weight": &req.CFGWeight} {
		if v := strings.TrimSpace(c.PostForm(field)); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return req, cleanup, invalid(fmt.Sprintf("%s must be a number (got %q)", field, v))
			}
			*dst = f
		}
	}
	if v := strings.TrimSpace(c.PostForm("prefer_video")); v != "" {
		prefer, err := strconv.ParseBool(v)
		if err != nil {
			return req, cleanup, invalid(fmt.Sprintf("prefer_video must be true or false (got %q)", v))
		}
		req.PreferPhoto = !prefer
	}
	mode, err := pipeline.ParseBackgroundMode(c.PostForm("background"))
	if err != nil {
		return req, cleanup, invalid(err.Error())
	}
	req.Background = mode

	voicePath, err := s.saveUpload(c, "voice", uploadID)
	if err != nil {
		return req, cleanup, err
	}
	if voicePath != "" {
		saved = append(saved, voicePath)
	}
	req.VoiceSample = voicePath

	if mode == pipeline.BackgroundManual {
		bgPath, err := s.saveUpload(c, "background_file", uploadID)
		if err != nil {
			return req, cleanup, err
		}
		if bgPath != "" {
			saved = append(saved, bgPath)
		}
		req.BackgroundPath = bgPath
	}
	return req, cleanup, nil
}

// saveUpload stores the named file field and returns its path, or "" when
// the field is absent.
func (s *Server) saveUpload(c *gin.Context, field, uploadID string) (string, error) {
	header, err := c.FormFile(field)
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return "", nil
	case errors.As(err, &tooLarge), errors.Is(err, multipart.ErrMessageTooLarge):
		return "", services.Wrap(services.ErrInput, "request", "", "upload too large", nil)
	case err != nil:
		return "", services.Wrap(services.ErrInput, "request", "", fmt.Sprintf("read %s upload", field), err)
	}
	if err := os.MkdirAll(s.opts.UploadDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrEnvironment, "request", "", "could not create upload directory", err)
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	dst := filepath.Join(s.opts.UploadDir, fmt.Sprintf("upload-%s-%s%s", uploadID[:8], field, ext))
	if err := c.SaveUploadedFile(header, dst); err != nil {
		return "", services.Wrap(services.ErrEnvironment, "request", "", fmt.Sprintf("could not store %s upload", field), err)
	}
	s.logger.Debug("upload stored",
		logging.String("field", field),
		logging.String("path", dst),
		logging.Int64("bytes", header.Size),
	)
	return dst, nil
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, services.ErrInput):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrEnvironment):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
