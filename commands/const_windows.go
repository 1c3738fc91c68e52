package commands

const (
	_etc = `C:\ProgramData\opgaveflyt`
	_var = `C:\ProgramData\opgaveflyt\var`

	DEFAULT_WORKDIR     = _var
	DEFAULT_CONFIG      = _etc + `\opgaveflyt-dispatcher.yaml`
	DEFAULT_DB          = _var + `\orchestrator.db`
	DEFAULT_CREDENTIALS = _etc + `\.google\credentials.json`
)
