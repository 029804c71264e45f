package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"loyalty_wheel/internal/pkg/config"
)

// ContactTask 抽奖成功后需要同步到 CRM 的玩家联系信息
type ContactTask struct {
	TicketID   string `json:"ticketId"`
	CampaignID string `json:"campaignId"`
	TenantID   string `json:"tenantId"`
	PlayerName string `json:"playerName"`
	Contact    string `json:"contact"` // 邮箱或手机号
	Retry      int    `json:"-"`       // 重试次数
}

// CRMSink CRM 推送接口
type CRMSink interface {
	Push(ctx context.Context, task ContactTask) error
}

// HTTPSink 通过 HTTP 推送到外部 CRM
type HTTPSink struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHTTPSink() *HTTPSink {
	cfg := config.GlobalConfig.CRM
	return &HTTPSink{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: time.Second * 5},
	}
}

func (s *HTTPSink) Push(ctx context.Context, task ContactTask) error {
	// 未配置 CRM 时直接跳过（本地开发环境）
	if s.endpoint == "" {
		return nil
	}

	body, err := json.Marshal(task)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("crm push failed with status %d", resp.StatusCode)
	}
	return nil
}

// WorkerPool 异步推送池：CRM 失败不能影响抽奖主流程，所以走后台队列 + 重试
type WorkerPool struct {
	TaskQueue  chan ContactTask
	RetryQueue chan ContactTask // 重试队列
	Sink       CRMSink
	WorkerNum  int
	MaxRetry   int // 最大重试次数
}

func NewWorkerPool(sink CRMSink, workerNum int, bufferSize int) *WorkerPool {
	return &WorkerPool{
		TaskQueue:  make(chan ContactTask, bufferSize),
		RetryQueue: make(chan ContactTask, bufferSize/2),
		Sink:       sink,
		WorkerNum:  workerNum,
		MaxRetry:   3, // 最多重试3次
	}
}

func (p *WorkerPool) Start() {
	for i := 0; i < p.WorkerNum; i++ {
		go p.worker(i)
	}
	// 启动重试处理协程
	go p.retryWorker()
	log.Printf("CRM worker pool started with %d workers", p.WorkerNum)
}

func (p *WorkerPool) worker(id int) {
	for task := range p.TaskQueue {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		err := p.Sink.Push(ctx, task)
		cancel()
		if err == nil {
			continue
		}

		log.Printf("[Worker %d] Failed to push contact (TicketID: %s): %v", id, task.TicketID, err)

		// 如果未达到最大重试次数，加入重试队列
		if task.Retry < p.MaxRetry {
			task.Retry++
			select {
			case p.RetryQueue <- task:
				log.Printf("[Worker %d] Task added to retry queue (attempt %d/%d)",
					id, task.Retry, p.MaxRetry)
			default:
				log.Printf("[Worker %d] Retry queue full, task dropped: %+v", id, task)
				p.logFailedTask(task, err)
			}
		} else {
			log.Printf("[Worker %d] Task exceeded max retries, dropped: %+v", id, task)
			p.logFailedTask(task, err)
		}
	}
}

func (p *WorkerPool) retryWorker() {
	for task := range p.RetryQueue {
		// 延迟重试，避免立即重试
		time.Sleep(time.Duration(task.Retry) * time.Second)

		// 重新加入主队列
		select {
		case p.TaskQueue <- task:
			log.Printf("[RetryWorker] Task re-queued (attempt %d/%d)", task.Retry, p.MaxRetry)
		default:
			log.Printf("[RetryWorker] Main queue full, task dropped: %+v", task)
			p.logFailedTask(task, nil)
		}
	}
}

func (p *WorkerPool) logFailedTask(task ContactTask, err error) {
	// CRM 同步是尽力而为：彻底失败只记日志，绝不反过来影响已发出的奖券
	log.Printf("[DeadLetter] Contact push failed permanently: TicketID=%s, Contact=%s, Error=%v",
		task.TicketID, task.Contact, err)
}

// AddTask 投递任务（非阻塞，队列满则丢弃）
func (p *WorkerPool) AddTask(task ContactTask) {
	select {
	case p.TaskQueue <- task:
		// 任务入队成功
	default:
		log.Printf("CRM worker pool queue full, dropping task: %+v", task)
		p.logFailedTask(task, nil)
	}
}
