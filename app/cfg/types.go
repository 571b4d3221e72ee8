package cfg

type Cfg struct {
	// Storage
	DBPath string

	// Application configuration
	LocalesFile       string
	Port              string
	WorkerCount       int
	SchedulerInterval int // seconds
	FetchTimeout      int // seconds
	NotifyInterval    int // seconds
	ForceReprocess    bool
	APIAccessKey      string

	// Telegram
	TelegramToken string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
