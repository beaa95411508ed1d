package keepalive

import (
	"context"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// TrialStore 每日巡检需要的最小查询面
type TrialStore interface {
	ExpiredTrialEmails(ctx context.Context, now time.Time) ([]string, error)
}

type Options struct {
	PingURL string        // 为空则不注册保活任务
	Timeout time.Duration // 单次 ping 超时
}

// Scheduler 两个定时任务：
//  1. 每 14 分钟 GET 一次自己，防止托管平台把闲置进程睡掉；失败只记日志，不重试
//  2. 每天零点（UTC）列出试用到期且未订阅的用户
type Scheduler struct {
	cron   *cron.Cron
	log    *zap.Logger
	client *http.Client
	opts   Options
	trials TrialStore
}

func New(opts Options, trials TrialStore, l *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC)),
		log:    l,
		client: &http.Client{Timeout: opts.Timeout},
		opts:   opts,
		trials: trials,
	}
}

func (s *Scheduler) Start() error {
	if s.opts.PingURL != "" {
		if _, err := s.cron.AddFunc("0 */14 * * * *", s.ping); err != nil {
			return err
		}
		s.log.Info("keep-alive ping scheduled",
			zap.String("url", s.opts.PingURL),
			zap.String("every", "14m"),
		)
	} else {
		s.log.Info("keep-alive ping disabled: no ping url configured")
	}
	if s.trials != nil {
		if _, err := s.cron.AddFunc("0 0 0 * * *", s.sweepTrials); err != nil {
			return err
		}
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) ping() {
	resp, err := s.client.Get(s.opts.PingURL)
	if err != nil {
		s.log.Warn("keep-alive ping failed", zap.Error(err))
		return
	}
	_ = resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		s.log.Info("keep-alive ping ok", zap.Int("status", resp.StatusCode))
	} else {
		s.log.Warn("keep-alive ping unexpected status", zap.Int("status", resp.StatusCode))
	}
}

func (s *Scheduler) sweepTrials() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	emails, err := s.trials.ExpiredTrialEmails(ctx, time.Now())
	if err != nil {
		s.log.Error("trial sweep failed", zap.Error(err))
		return
	}
	if len(emails) == 0 {
		s.log.Info("trial sweep: no expired trials")
		return
	}
	s.log.Info("trial sweep: expired unconverted trials",
		zap.Int("count", len(emails)),
		zap.Strings("emails", emails),
	)
}
