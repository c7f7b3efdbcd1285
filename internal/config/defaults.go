package config

const (
	defaultDataDir               = "~/.local/share/subfetch"
	defaultLogDir                = "~/.local/share/subfetch/logs"
	defaultLanguage              = "eng"
	defaultCutoff                = 0.75
	defaultCatalogEndpoint       = "https://api.opensubtitles.org/xml-rpc"
	defaultCatalogUserAgent      = "ossubd"
	defaultLoginAttempts         = 3
	defaultQueryAttempts         = 2
	defaultRetryDelaySeconds     = 2
	defaultRequestTimeoutSeconds = 30
	defaultMinIntervalMillis     = 250
	defaultWorkers               = 4
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogMaxSizeMB          = 10
	defaultLogMaxBackups         = 3
)

var defaultVideoExtensions = []string{
	".3g2", ".3gp", ".3gp2", ".3gpp", ".60d", ".ajp", ".asf", ".asx",
	".avchd", ".avi", ".bik", ".bix", ".box", ".cam", ".dat", ".divx",
	".dmf", ".dv", ".dvr-ms", ".evo", ".flc", ".fli", ".flic", ".flv",
	".flx", ".gvi", ".gvp", ".h264", ".m1v", ".m2p", ".m2ts", ".m2v",
	".m4e", ".m4v", ".mjp", ".mjpeg", ".mjpg", ".mkv", ".moov", ".mov",
	".movhd", ".movie", ".movx", ".mp4", ".mpe", ".mpeg", ".mpg", ".mpv",
	".mpv2", ".mxf", ".nsv", ".nut", ".ogg", ".ogm", ".omf", ".ps", ".qt",
	".ram", ".rm", ".rmvb", ".swf", ".ts", ".vfw", ".vid", ".video",
	".viv", ".vivo", ".vob", ".vro", ".wm", ".wmv", ".wmx", ".wrap",
	".wvx", ".wx", ".x264", ".xvid",
}

var defaultSubtitleExtensions = []string{
	".aqt", ".gsub", ".jss", ".sub", ".pjs", ".psb", ".rt", ".smi",
	".stl", ".ssf", ".srt", ".ssa", ".ass", ".usf",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Subtitles: Subtitles{
			Language:           defaultLanguage,
			Cutoff:             defaultCutoff,
			VideoExtensions:    append([]string(nil), defaultVideoExtensions...),
			SubtitleExtensions: append([]string(nil), defaultSubtitleExtensions...),
		},
		Catalog: Catalog{
			Endpoint:              defaultCatalogEndpoint,
			UserAgent:             defaultCatalogUserAgent,
			LoginAttempts:         defaultLoginAttempts,
			QueryAttempts:         defaultQueryAttempts,
			RetryDelaySeconds:     defaultRetryDelaySeconds,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
			MinIntervalMillis:     defaultMinIntervalMillis,
		},
		Pipeline: Pipeline{
			Workers: defaultWorkers,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
		},
	}
}
