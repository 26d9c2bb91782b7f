package common

import "time"

var Version = "v0.0.0"
var StartTime = time.Now().Unix()

var SQLitePath = "pixai.db"
var SQLiteBusyTimeout = 3000
