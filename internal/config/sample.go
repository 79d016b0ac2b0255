package config

// SampleConfig returns a fully commented configuration file
func SampleConfig() string {
	return `# runlens configuration
version: "1.0"

viewer:
  # Quiet period after the last keystroke before a search runs
  debounce_delay: 300ms
  # Levels shown when a log is opened (error, warn, debug, info, trace)
  default_levels: [ERROR, WARN, DEBUG, INFO, TRACE]
  match_case: false
  whole_word: false
  # default | high-contrast | minimal
  theme: default
  # Rewrite JSON and logfmt lines into plain level-tagged lines
  normalize: false

server:
  # Dashboard API serving /api/runs/{run}/artifacts
  base_url: http://localhost:8080
  timeout: 30s
  # Where "artifact get" saves files
  download_dir: .
  # Page that permalinks point at; {run} is replaced by the run id
  page_url: http://localhost:3000/runs/{run}

output:
  # text | json | csv | markdown
  default_format: text
  # auto | always | never
  color_mode: auto
  verbose: false

watch:
  # Delay between a file write and the reload
  debounce: 300ms
  # Print the existing content before following
  from_start: false
`
}

// MinimalSampleConfig returns a short configuration file
func MinimalSampleConfig() string {
	return `version: "1.0"

server:
  base_url: http://localhost:8080
  page_url: http://localhost:3000/runs/{run}

output:
  default_format: text
`
}
