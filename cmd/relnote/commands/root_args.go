package commands

type RootArgs struct {
	logLevel  *string
	logFormat *string
	path      *string
}

func NewRootArgs() *RootArgs {
	return &RootArgs{
		logLevel:  new(string),
		logFormat: new(string),
		path:      new(string),
	}
}

func (a *RootArgs) GetLogLevel() string {
	return *a.logLevel
}

func (a *RootArgs) GetLogFormat() string {
	return *a.logFormat
}

func (a *RootArgs) GetPath() string {
	return *a.path
}
