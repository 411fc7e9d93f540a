package profiling

import (
	"fmt"
	"strings"
	"time"

	"github.com/getmentor/notion-notifier/config"
	"github.com/getmentor/notion-notifier/pkg/logger"
	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

const defaultUploadInterval = 15 * time.Second

// The notifier is mostly idle network I/O, so mutex/block profiles are opt-in
var defaultProfileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileAllocObjects,
	pyroscope.ProfileGoroutines,
}

var profileTypeMap = map[string][]pyroscope.ProfileType{
	"cpu":           {pyroscope.ProfileCPU},
	"alloc_space":   {pyroscope.ProfileAllocSpace},
	"alloc_objects": {pyroscope.ProfileAllocObjects},
	"inuse":         {pyroscope.ProfileInuseSpace, pyroscope.ProfileInuseObjects},
	"goroutines":    {pyroscope.ProfileGoroutines},
	"mutex":         {pyroscope.ProfileMutexCount, pyroscope.ProfileMutexDuration},
	"block":         {pyroscope.ProfileBlockCount, pyroscope.ProfileBlockDuration},
}

// InitProfiler starts continuous profiling when enabled and returns its stop function
func InitProfiler(cfg config.ProfilingConfig, serviceName, namespace, version, instanceID, environment string) (func(), error) {
	if !cfg.Enabled {
		logger.Info("Continuous profiling disabled")
		return func() {}, nil
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("profiling endpoint is required when profiling is enabled")
	}

	uploadRate := time.Duration(cfg.UploadIntervalSeconds) * time.Second
	if uploadRate <= 0 {
		uploadRate = defaultUploadInterval
	}

	profileTypes, err := parseProfileTypes(cfg.SampleTypes)
	if err != nil {
		return nil, err
	}

	appName := cfg.AppName
	if strings.TrimSpace(appName) == "" {
		appName = serviceName
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: strings.TrimSpace(appName),
		ServerAddress:   endpoint,
		UploadRate:      uploadRate,
		ProfileTypes:    profileTypes,
		Tags:            profileTags(serviceName, namespace, environment, version, instanceID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start profiler: %w", err)
	}

	logger.Info("Continuous profiling initialized",
		zap.String("application_name", appName),
		zap.String("endpoint", endpoint),
		zap.Duration("upload_rate", uploadRate),
	)

	return func() {
		if stopErr := profiler.Stop(); stopErr != nil {
			logger.Error("Failed to stop profiler", zap.Error(stopErr))
		}
	}, nil
}

func parseProfileTypes(value string) ([]pyroscope.ProfileType, error) {
	if strings.TrimSpace(value) == "" {
		return defaultProfileTypes, nil
	}

	var types []pyroscope.ProfileType
	seen := make(map[pyroscope.ProfileType]bool)

	for _, raw := range strings.Split(value, ",") {
		key := strings.ToLower(strings.TrimSpace(raw))
		if key == "" {
			continue
		}
		mapped, ok := profileTypeMap[key]
		if !ok {
			return nil, fmt.Errorf("unsupported O11Y_PROFILING_SAMPLE_TYPES value: %q", key)
		}
		for _, t := range mapped {
			if !seen[t] {
				seen[t] = true
				types = append(types, t)
			}
		}
	}

	if len(types) == 0 {
		return defaultProfileTypes, nil
	}
	return types, nil
}

// profileTags drops empty values so pyroscope does not index blank labels
func profileTags(serviceName, namespace, environment, version, instanceID string) map[string]string {
	candidates := map[string]string{
		"service_name":    serviceName,
		"namespace":       namespace,
		"environment":     environment,
		"service_version": version,
		"instance":        instanceID,
	}

	tags := make(map[string]string, len(candidates))
	for k, v := range candidates {
		if v = strings.TrimSpace(v); v != "" {
			tags[k] = v
		}
	}
	return tags
}
