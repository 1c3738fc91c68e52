package commands

const (
	_etc = "/usr/local/etc/opgaveflyt"
	_var = "/usr/local/var/opgaveflyt"

	DEFAULT_WORKDIR     = _var
	DEFAULT_CONFIG      = _etc + "/opgaveflyt-dispatcher.yaml"
	DEFAULT_DB          = _var + "/orchestrator.db"
	DEFAULT_CREDENTIALS = _etc + "/.google/credentials.json"
)
