package main

// General API documentation for swaggo. Generate with
//
//	swag init -g cmd/loramgr/docs.go -o internal/httpapi --packageName httpapi --outputTypes go
//
// and build with -tags=swagger to serve it under /swagger/.
//
// @title           loramgr API
// @version         1.0
// @description     Diagnostics for the model library static route table.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
