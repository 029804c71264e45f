package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// PlayDuration 抽奖请求耗时
	PlayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wheel_play_duration_seconds",
			Help:    "Duration of play requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		},
		[]string{"result"}, // issued / already_played / no_eligible_prizes / error
	)

	// PlaysTotal 抽奖请求计数
	PlaysTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wheel_plays_total",
			Help: "Total number of play requests by result",
		},
		[]string{"result"},
	)

	// RedrawsTotal 库存耗尽触发的重抽计数
	RedrawsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wheel_stock_redraws_total",
			Help: "Total number of redraws caused by exhausted prize stock",
		},
	)

	// RedemptionsTotal 核销请求计数
	RedemptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wheel_redemptions_total",
			Help: "Total number of ticket redemption attempts by result",
		},
		[]string{"result"}, // redeemed / already_redeemed / expired / not_found / error
	)

	// 数据库连接池指标
	dbConnsInUse = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_connections_in_use",
		Help: "Number of database connections currently in use",
	})
	dbConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_connections_idle",
		Help: "Number of idle database connections",
	})
	// 累计等待时长，但由采集循环整值覆写，所以用 Gauge 而非 Counter
	dbConnWaitSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_connection_wait_seconds",
		Help: "Cumulative time blocked waiting for a database connection",
	})
)

// RecordPlay 记录一次抽奖请求
func RecordPlay(result string, duration time.Duration) {
	PlaysTotal.WithLabelValues(result).Inc()
	PlayDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// RecordRedemption 记录一次核销请求
func RecordRedemption(result string) {
	RedemptionsTotal.WithLabelValues(result).Inc()
}

// StartPoolCollector 周期采集数据库连接池状态
func StartPoolCollector(db *gorm.DB, interval time.Duration) chan<- struct{} {
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					continue
				}
				stats := sqlDB.Stats()
				dbConnsInUse.Set(float64(stats.InUse))
				dbConnsIdle.Set(float64(stats.Idle))
				dbConnWaitSeconds.Set(stats.WaitDuration.Seconds())
			case <-stop:
				return
			}
		}
	}()
	return stop
}
