package commands

const (
	_etc = "/etc/opgaveflyt"
	_var = "/var/lib/opgaveflyt"

	DEFAULT_WORKDIR     = _var
	DEFAULT_CONFIG      = _etc + "/opgaveflyt-dispatcher.yaml"
	DEFAULT_DB          = _var + "/orchestrator.db"
	DEFAULT_CREDENTIALS = _etc + "/.google/credentials.json"
)
