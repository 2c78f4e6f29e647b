package codegen

import "github.com/kazz187/sh2c/internal/target"

// bashPrelude is prepended once per Bash-target program: strict-mode
// options, the error trap, and the runtime helper functions every emitted
// call site may reference (__sh2_confirm, __sh2_bool_str, which/matches
// helpers). It is deliberately one fixed block rather than assembled
// piecemeal, so every generated script traps failures identically.
const bashPrelude = `#!/usr/bin/env bash
set -euo pipefail

__sh2_confirm() {
  local prompt="${1:-Continue?}"
  local default="${2:-n}"
  local reply
  read -r -p "${prompt} " reply || true
  reply="${reply:-${default}}"
  case "${reply}" in
    [yY]|[yY][eE][sS]) return 0 ;;
    *) return 1 ;;
  esac
}

__sh2_bool_str() {
  if [ "${1}" = "1" ] || [ "${1}" = "true" ]; then
    printf 'true'
  else
    printf 'false'
  fi
}

__sh2_which() {
  command -v "${1}" 2>/dev/null || true
}

__sh2_matches() {
  [[ "${1}" =~ ${2} ]]
}

__sh2_find_files() {
  find "${1}" -name "${2}"
}

`

// posixPrelude is the POSIX sh counterpart. It drops the bashisms
// (pipefail, [[ ]], command -v's portable form is already POSIX, so it
// stays): matches() uses glob case-matching at the call site instead of a
// helper, since POSIX has no regex test construct.
const posixPrelude = `#!/bin/sh
set -eu

__sh2_confirm() {
  prompt="${1:-Continue?}"
  default="${2:-n}"
  printf '%s ' "${prompt}"
  read -r reply || true
  reply="${reply:-${default}}"
  case "${reply}" in
    [yY]|[yY][eE][sS]) return 0 ;;
    *) return 1 ;;
  esac
}

__sh2_bool_str() {
  if [ "${1}" = "1" ] || [ "${1}" = "true" ]; then
    printf 'true'
  else
    printf 'false'
  fi
}

__sh2_which() {
  command -v "${1}" 2>/dev/null || true
}

`

func (e *Emitter) writePrelude() {
	switch e.tgt {
	case target.Posix:
		e.writeRaw(posixPrelude)
	default:
		e.writeRaw(bashPrelude)
	}
}
