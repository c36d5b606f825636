package admin

// SystemHealth represents system-wide health status
type SystemHealth struct {
	Status   string        `json:"status"`
	Database ServiceHealth `json:"database"`
	Uptime   string        `json:"uptime"`
	Version  string        `json:"version"`
}

// ServiceHealth represents health of a single dependency
type ServiceHealth struct {
	Status  string `json:"status"`
	Latency string `json:"latency"`
	Message string `json:"message,omitempty"`
}

// SystemMetrics contains process-wide metrics
type SystemMetrics struct {
	Memory        MemoryMetrics  `json:"memory"`
	Goroutines    int            `json:"goroutines"`
	DBConnections *DBConnMetrics `json:"db_connections,omitempty"`
}

// MemoryMetrics contains Go runtime memory metrics
type MemoryMetrics struct {
	Alloc      uint64 `json:"alloc_bytes"`
	TotalAlloc uint64 `json:"total_alloc_bytes"`
	Sys        uint64 `json:"sys_bytes"`
	NumGC      uint32 `json:"num_gc"`
}

// DBConnMetrics contains database connection pool metrics
type DBConnMetrics struct {
	TotalConns int32 `json:"total_conns"`
	IdleConns  int32 `json:"idle_conns"`
	MaxConns   int32 `json:"max_conns"`
}
