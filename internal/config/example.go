package config

// Example is written by `nodpts init` when the repository has no config.
const Example = `# nodpts configuration

# Files excluded from scanning, linting and AI review (gitignore syntax).
ignored_files = [
    "*.lock",
    "*.min.js",
    "*.min.css",
    "package-lock.json",
    "yarn.lock",
]

# Extra secret patterns (RE2 syntax), reported as "Custom Pattern #N".
custom_patterns = [
    # "MY_SECRET_[A-Z0-9]{32}",
]

# AI review. The key is read from GROQ_API_KEY, OPENAI_API_KEY or
# ANTHROPIC_API_KEY depending on the provider, or from ai_api_key_env.
ai_enabled  = true
ai_provider = "groq"
ai_model    = "llama-3.3-70b-versatile"

# Also run the gitleaks default rule set.
extended_rules = false

max_lint_workers = 4

[rate_limit]
requests_per_minute = 30

# Outcomes that fail a commit in addition to medium/high secrets, failed
# lints and AI rejections.
[policy]
fail_on_low            = false
fail_on_skipped_lint   = false
fail_on_ai_unavailable = false
fail_on_degraded       = false

[timeouts]
linter          = "30s"
ai              = "60s"
rate_limit_wait = "5s"
run             = "3m"

# Override or disable the linter for a language. "{path}" in args is
# replaced by the staged file's path. With stdin = true the linter runs
# from the repository root and reads the staged content on stdin;
# otherwise it gets a copy of the file.
# [linters.python]
# command     = "ruff"
# args        = ["check", "--stdin-filename", "{path}", "-"]
# stdin       = true
# error_codes = [2]
#
# [linters.shell]
# disabled = true
`
