package main

import (
	"context"
	"encoding/base64"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/greensplit/entity/junction"
	"github.com/tsinghua-fib-lab/greensplit/server"
	"github.com/tsinghua-fib-lab/greensplit/task"
	"github.com/tsinghua-fib-lab/greensplit/utils/config"
	"github.com/tsinghua-fib-lab/greensplit/utils/input"
	"github.com/tsinghua-fib-lab/greensplit/utils/metrics"
)

var (
	// 配置文件路径
	configPath = flag.String("config", "", "config file path")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")
	// HTTP监听地址，设置为空则只运行一次优化后退出
	listenAddr = flag.String("listen", "", "HTTP listening address (empty means run once and exit), e.g. :8080")
	// 覆盖配置中的参数
	cycleLength    = flag.Float64("cycle", 0, "cycle length in seconds (0 means use config)")
	saturationRate = flag.Float64("saturation", 0, "saturation flow rate in veh/s (0 means use config)")
	outputPath     = flag.String("output", "", "result file path, .json/.yaml/.msgpack (empty means use config)")
	// 合成车流
	genFlow    = flag.String("gen-flow", "", "write synthetic flows for the configured intersection to this path and exit")
	genRate    = flag.Float64("gen-flow.rate", 0.2, "synthetic arrival rate in veh/s")
	genHorizon = flag.Float64("gen-flow.horizon", 3600, "synthetic flow horizon in seconds")
	genSeed    = flag.Uint64("gen-flow.seed", 0, "synthetic flow seed")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "greensplit")
)

// newFormatter 日志格式，module字段来自各包的logger.go
func newFormatter() logrus.Formatter {
	return &easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	}
}

// 环境变量，覆盖input.uri
const envMongoURI = "TSO_MONGO_URI"

func main() {
	flag.Parse()
	logrus.SetFormatter(newFormatter())
	// log: 运行时才修改
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using system environment")
	}

	// 获取配置
	var file []byte
	var err error
	if *configPath != "" {
		file, err = os.ReadFile(*configPath)
		if err != nil {
			log.Panicf("config file load err: %v", err)
		}
	} else if *configData != "" {
		file, err = base64.StdEncoding.DecodeString(*configData)
		if err != nil {
			log.Panicf("config data load err: %v", err)
		}
	} else {
		log.Panic("config file or config data must be specified")
	}
	c, err := config.Load(file)
	if err != nil {
		log.Panicf("config file load err: %v", err)
	}
	if uri := os.Getenv(envMongoURI); uri != "" {
		c.Input.URI = uri
	}
	if *outputPath != "" {
		c.Output.File = *outputPath
	}
	rc, err := config.NewRuntimeConfig(c)
	if err != nil {
		log.Panicf("invalid config: %v", err)
	}
	log.Infof("%+v", rc.C)

	if *genFlow != "" {
		generate(rc)
		return
	}

	m, err := metrics.NewCollector(nil)
	if err != nil {
		log.Panicf("failed to register metrics: %v", err)
	}
	t := task.NewContext(rc, m)
	if *listenAddr != "" {
		serve(t, m)
		return
	}

	res, err := t.Run(context.Background(), task.Params{CycleLength: *cycleLength, SaturationRate: *saturationRate})
	if err != nil {
		log.Fatalf("optimization failed: %v", err)
	}
	if err := task.Report(os.Stdout, res); err != nil {
		log.Errorf("failed to print report: %v", err)
	}
	if rc.All.Output.File != "" {
		if err := task.WriteResult(rc.All.Output.File, res); err != nil {
			log.Fatalf("failed to write result: %v", err)
		}
	}
}

// generate 为配置中的路口合成车流并写入文件
func generate(rc *config.RuntimeConfig) {
	rn, err := input.LoadRoadnet(context.Background(), rc.All.Input)
	if err != nil {
		log.Panicf("failed to load roadnet: %v", err)
	}
	jm := junction.NewManager()
	jm.Init(rn.Intersections, rn.Roads)
	if _, err := jm.GetOrError(rc.C.Intersection); err != nil {
		log.Panicf("%v", err)
	}
	flows, err := input.Synthesize(input.SyntheticOptions{
		Roads:   jm.IncomingRoads(rc.C.Intersection),
		Rate:    *genRate,
		Horizon: *genHorizon,
		Seed:    *genSeed,
	})
	if err != nil {
		log.Panicf("failed to synthesize flows: %v", err)
	}
	if err := input.WriteFlows(*genFlow, flows); err != nil {
		log.Panicf("failed to write flows: %v", err)
	}
	log.Infof("write %d flows to %s", len(flows), *genFlow)
}

// serve 启动HTTP服务，收到中断信号后优雅退出
func serve(t *task.Context, m *metrics.Collector) {
	app := server.New(t, m)
	go func() {
		log.Infof("server starting on %s", *listenAddr)
		if err := app.Listen(*listenAddr); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Errorf("server forced to shutdown: %v", err)
	}
}
