//go:build !dlist_debug

package dlist

const debug = false
