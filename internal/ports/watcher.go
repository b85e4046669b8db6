package ports

// Watcher monitors a single file and reports changes to it.
type Watcher interface {
	// Watch starts monitoring filePath. onChange is called with the absolute
	// path of the file after it is written, created, or replaced. The
	// callback may be invoked from any goroutine and must not call Stop.
	// Returns an error if the file's directory doesn't exist or permissions
	// are insufficient.
	Watch(filePath string, onChange func(filePath string)) error

	// Stop ends monitoring and releases all resources. After Stop returns,
	// no onChange call is running and none will fire. Safe to call multiple
	// times.
	Stop() error
}
