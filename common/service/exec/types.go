package exec

// Executor runs a command locally or on the remote engine host.
type Executor interface {
	Run() error
	RunWithResult() ([]byte, error)
	String() string
	Close() error
}
