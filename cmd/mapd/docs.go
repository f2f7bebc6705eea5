package main

//go:generate swag init -g cmd/mapd/main.go -o docs

// @title           Wanderer Map API
// @version         0.1.0
// @description     Signature reconciliation, lifecycle, and map change events.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
