// =============================================================================
// SwarmFlow 引擎遥测
// =============================================================================
// 会话引擎的链路追踪与指标导出: 统一的 instrumentation scope、
// 会话/轮转/嵌套子会话 span 的属性集，以及 OTLP gRPC 导出器的装配。
// 遥测未启用时全局 provider 保持 noop，不连接任何外部服务。
// =============================================================================

package telemetry

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ScopeName 是引擎所有 span 的 instrumentation scope。
const ScopeName = "github.com/BaSui01/swarmflow/swarm"

// 引擎 span 使用的属性键。
const (
	attrSessionID    = attribute.Key("swarm.session.id")
	attrInitialActor = attribute.Key("swarm.session.initial_actor")
	attrActor        = attribute.Key("swarm.actor")
	attrTrigger      = attribute.Key("swarm.nested.trigger")
	attrSteps        = attribute.Key("swarm.nested.steps")
)

// metricExportInterval 是指标周期性上报的间隔。
const metricExportInterval = 30 * time.Second

// Config 遥测配置。与应用配置结构解耦，由调用方映射。
type Config struct {
	// Enabled 为 false 时 Init 返回 noop Providers。
	Enabled bool
	// Endpoint 是 OTLP gRPC Collector 地址。
	Endpoint string
	// ServiceName 标识导出数据归属的服务。
	ServiceName string
	// SampleRate 是根 span 的采样比例，子 span 跟随父级决策。
	SampleRate float64
}

// Tracer 返回引擎 tracer。SDK 未初始化或遥测禁用时由 noop provider 提供。
func Tracer() trace.Tracer {
	return otel.Tracer(ScopeName)
}

// SessionAttrs 是会话 span 的属性集。
func SessionAttrs(sessionID, initialActor string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attrSessionID.String(sessionID),
		attrInitialActor.String(initialActor),
	}
}

// TurnAttrs 是单次轮转 span 的属性集。
func TurnAttrs(actor string) []attribute.KeyValue {
	return []attribute.KeyValue{attrActor.String(actor)}
}

// NestedAttrs 是嵌套子会话 span 的属性集。
func NestedAttrs(trigger string, steps int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attrTrigger.String(trigger),
		attrSteps.Int(steps),
	}
}

// Providers 持有 OTel SDK 的 TracerProvider 和 MeterProvider。
// 遥测禁用时两个字段为 nil，Shutdown 为 no-op。
type Providers struct {
	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

// Init 装配 OTel SDK 并注册为全局 provider。导出失败走 zap 告警
// 而非 OTel 默认的 stderr 输出。
func Init(cfg Config, logger *zap.Logger) (*Providers, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		logger.Info("telemetry disabled, using noop providers")
		return &Providers{}, nil
	}

	ctx := context.Background()
	res, err := buildResource(ctx, cfg.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}
	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create metric exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))),
	)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter,
			sdkmetric.WithInterval(metricExportInterval))),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		logger.Warn("otel export error", zap.Error(err))
	}))

	logger.Info("telemetry initialized",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("service_name", cfg.ServiceName),
		zap.Float64("sample_rate", cfg.SampleRate),
	)
	return &Providers{tp: tp, mp: mp}, nil
}

// buildResource 描述导出数据归属的服务: 服务名、模块版本与引擎标识。
func buildResource(ctx context.Context, serviceName string) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(buildVersion()),
			attribute.String("swarm.engine", "swarmflow"),
		),
	)
}

// Shutdown 刷新未导出的 span/指标并关闭导出器。noop Providers 安全。
func (p *Providers) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var tpErr, mpErr error
	if p.tp != nil {
		tpErr = p.tp.Shutdown(ctx)
	}
	if p.mp != nil {
		mpErr = p.mp.Shutdown(ctx)
	}
	return errors.Join(tpErr, mpErr)
}

// buildVersion 从构建信息提取模块版本，开发态回退为 "dev"。
func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}
