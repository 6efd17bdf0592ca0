package config

const (
	defaultEpisodesDir      = "~/.local/share/p0d/episodes"
	defaultOutputDir        = "~/.local/share/p0d/output"
	defaultPromptsDir       = "~/.local/share/p0d/prompts"
	defaultLogDir           = "~/.local/share/p0d/logs"
	defaultTrackerBaseURL   = "https://api.github.com"
	defaultTrackerUserAgent = "PR-CYBR-P0D/1.0"
	defaultTrackerCallDelay = 500
	defaultWorkspaceBaseURL = "https://api.notion.com/v1"
	defaultWorkspaceVersion = "2022-06-28"
	defaultSeasonCount      = 17
	defaultLLMBaseURL       = "https://api.openai.com/v1/chat/completions"
	defaultLLMModel         = "gpt-4o-mini"
	defaultLLMTimeout       = 60
	defaultRetryAttempts    = 3
	defaultRetryDelay       = 5
	defaultDownloadTimeout  = 300
	defaultAudioBitrate     = 128
	defaultLiveProperty     = "Episode Live"
	defaultScheduleSeasons  = 17
	defaultEpisodesPerSeas  = 52
	defaultScheduleStart    = "2024-01-01"
	defaultNamingPrefix     = "P0D"
	defaultNamingTheme      = "AXIS"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			EpisodesDir: defaultEpisodesDir,
			OutputDir:   defaultOutputDir,
			PromptsDir:  defaultPromptsDir,
			LogDir:      defaultLogDir,
		},
		Tracker: Tracker{
			BaseURL:     defaultTrackerBaseURL,
			UserAgent:   defaultTrackerUserAgent,
			CallDelayMS: defaultTrackerCallDelay,
		},
		Workspace: Workspace{
			BaseURL:     defaultWorkspaceBaseURL,
			Version:     defaultWorkspaceVersion,
			SeasonCount: defaultSeasonCount,
			Seasons:     map[string]string{},
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeout,
		},
		Sync: Sync{
			RetryAttempts:     defaultRetryAttempts,
			RetryDelaySeconds: defaultRetryDelay,
			DownloadTimeout:   defaultDownloadTimeout,
			AudioBitrateKbps:  defaultAudioBitrate,
			LiveProperty:      defaultLiveProperty,
		},
		Schedule: Schedule{
			Seasons:           defaultScheduleSeasons,
			EpisodesPerSeason: defaultEpisodesPerSeas,
			StartDate:         defaultScheduleStart,
		},
		Naming: Naming{
			Prefix: defaultNamingPrefix,
			Theme:  defaultNamingTheme,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
