package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hecos/internal/model"
)

// maxBodySize 单次拉取的响应体上限
const maxBodySize = 32 << 20

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Client 表格数据拉取客户端（单次 GET，不重试）
type Client struct {
	http    *http.Client
	logger  *zap.Logger
	maxBody int64
}

// NewClient 创建客户端；timeout<=0 时不设超时，仅受 ctx 控制
func NewClient(timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
		maxBody: maxBodySize,
	}
}

// Fetch 拉取并解析一个数据源
// http(s) 地址走网络，file:// 与本地路径直接读盘
func (c *Client) Fetch(ctx context.Context, rawURL string) (model.DataSet, error) {
	requestID := uuid.New().String()
	start := time.Now()
	log := c.logger.With(zap.String("request_id", requestID), zap.String("url", rawURL))

	var (
		ds  model.DataSet
		err error
	)
	if isRemote(rawURL) {
		ds, err = c.fetchRemote(ctx, rawURL)
	} else {
		ds, err = LoadFile(rawURL)
	}
	if err != nil {
		log.Warn("sheet fetch failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return model.DataSet{}, err
	}

	ds.RequestID = requestID
	ds.FetchedAt = time.Now()
	log.Info("sheet fetched",
		zap.Int("rows", len(ds.Rows)),
		zap.Int("columns", len(ds.Columns)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return ds, nil
}

func (c *Client) fetchRemote(ctx context.Context, rawURL string) (model.DataSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return model.DataSet{}, fmt.Errorf("%w: build request: %w", ErrFetch, err)
	}
	req.Header.Set("Accept", "text/csv, "+xlsxContentType+";q=0.9, */*;q=0.5")

	resp, err := c.http.Do(req)
	if err != nil {
		return model.DataSet{}, fmt.Errorf("%w: GET: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return model.DataSet{}, fmt.Errorf("%w: unexpected status %s", ErrFetch, resp.Status)
	}

	// 多读一个字节用于判断是否超限，超限时整体失败而不是截断
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return model.DataSet{}, fmt.Errorf("%w: read body: %w", ErrFetch, err)
	}
	if int64(len(body)) > c.maxBody {
		return model.DataSet{}, fmt.Errorf("%w: body exceeds %d bytes", ErrFetch, c.maxBody)
	}

	if isXLSX(resp.Header.Get("Content-Type"), rawURL) {
		return ParseXLSX(bytes.NewReader(body))
	}
	return ParseCSV(bytes.NewReader(body))
}

// LoadFile 从本地文件读取数据源，按扩展名选择 CSV 或 xlsx
func LoadFile(path string) (model.DataSet, error) {
	path = strings.TrimPrefix(path, "file://")
	f, err := os.Open(path)
	if err != nil {
		return model.DataSet{}, fmt.Errorf("%w: open %s: %w", ErrFetch, path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ParseXLSX(f)
	}
	return ParseCSV(f)
}

func isRemote(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// isXLSX Content-Type 或 URL 中的 format=xlsx 任一命中即按工作簿解析
func isXLSX(contentType, rawURL string) bool {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), xlsxContentType) {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Query().Get("format"), "xlsx")
}
