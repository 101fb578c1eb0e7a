package config

// Loader defines the interface for configuration loaders
type Loader interface {
	// Load loads the configuration into the target
	Load(target any) error

	// Watch starts watching for configuration changes
	// The callback is invoked when configuration changes are detected
	Watch(callback func()) error
}

// Defaulter is implemented by targets that fill in their zero values.
// Defaults is called before the file is unmarshalled, so file values win.
type Defaulter interface {
	Defaults()
}
