package tasks

// TaskSchedulerInterface defines the scheduler operations used by the main
// application and the API layer.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	EnqueueProcessLocale(locale string, force bool) error
}
