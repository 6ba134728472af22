package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Populate embeddedConfigs at build time (e.g. via code generation) or
// manually during development.
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

const cfgPico = `{
  "clock": {
      "interval": 5,
      "format": 24
  },
  "clockout": {
      "enabled": false,
      "level": 0,
      "divider": 0
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico": []byte(cfgPico),
}
