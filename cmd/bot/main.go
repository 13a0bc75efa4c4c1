package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"go.uber.org/zap"

	"gate-mm-go/config"
	"gate-mm-go/gateway"
	"gate-mm-go/infrastructure/eventlog"
	"gate-mm-go/infrastructure/logger"
	"gate-mm-go/infrastructure/monitor"
	"gate-mm-go/internal/session"
	"gate-mm-go/ledger"
	"gate-mm-go/market"
	"gate-mm-go/order"
	"gate-mm-go/risk"
	"gate-mm-go/sim"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	autoStart := flag.Bool("start", true, "启动后立即开启策略")
	flag.Parse()

	cfg, err := config.LoadWithEnvOverrides(*cfgPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	zlog, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zlog.Close()

	memSink := eventlog.NewMemorySink(500)
	events := eventlog.New(memSink, eventlog.NewZapSink(zlog))

	mon := monitor.New(monitor.DefaultConfig())
	if cfg.MetricsAddr != "" {
		mon.Serve(cfg.MetricsAddr)
		zlog.Info("metrics listening", zap.String("addr", cfg.MetricsAddr))
	}

	ledgr := &ledger.Ledger{}
	book := order.NewBook()

	var gw order.Gateway
	var simEng *sim.Engine
	if cfg.Strategy.Simulation {
		simEng = sim.NewEngine(ledgr)
		gw = simEng
		zlog.Info("simulation mode, orders matched locally")
	} else {
		gw = gateway.NewRESTClient(cfg.Gateway.BaseURL, cfg.Gateway.APIKey, cfg.Gateway.APISecret, book)
	}

	feed := gateway.NewWSFeed(gateway.FeedConfig{
		URL:       cfg.Gateway.WSURL,
		Symbol:    cfg.Strategy.Symbol(),
		APIKey:    cfg.Gateway.APIKey,
		APISecret: cfg.Gateway.APISecret,
		Private:   !cfg.Strategy.Simulation,
	}, zlog, mon)

	sess, err := session.New(cfg, session.Components{
		Ledger:  ledgr,
		Book:    book,
		Gateway: gw,
		Sim:     simEng,
		Feed:    feed,
		Events:  events,
		Logger:  zlog,
		Monitor: mon,
		History: market.NewHistory(100),
		Clock:   risk.RealClock,
	})
	if err != nil {
		log.Fatalf("初始化会话失败: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 配置热更新：新配置只暂存，下次启动生效。
	watcher, err := config.NewWatcher(*cfgPath)
	if err != nil {
		zlog.Warn("config watcher unavailable", zap.Error(err))
	} else {
		err = watcher.Start(ctx, func(next config.AppConfig) {
			sess.Stage(next.Strategy)
			events.Infof("config change staged, applies on next start")
		})
		if err != nil {
			zlog.Warn("config watch failed", zap.Error(err))
		} else {
			defer watcher.Stop()
		}
	}

	if *autoStart {
		if err := sess.Start(); err != nil {
			log.Fatalf("启动策略失败: %v", err)
		}
	}

	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	go watchdogLoop(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	sess.Stop()
	zlog.Info("bot exit")
}

// watchdogLoop 按 systemd watchdog 周期的一半发送心跳。
func watchdogLoop(ctx context.Context) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return
	}
	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = daemon.SdNotify(false, daemon.SdNotifyWatchdog)
		}
	}
}
