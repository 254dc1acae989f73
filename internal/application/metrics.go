package application

import "expvar"

// Counters published under /api/debug/vars.
var stats = expvar.NewMap("blog_api")

func count(name string) { stats.Add(name, 1) }
