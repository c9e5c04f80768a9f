package constants

const (
	AppName      = "oilcall"
	ConfigName   = "config"
	ConfigFormat = "yaml"
	EnvPrefix    = "OILCALL"
)
