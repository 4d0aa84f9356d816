package main

import "github.com/vedanttapdiya/vt-portfolio/internal/app"

// @title           vt-portfolio API
// @version         1.0
// @description     Human-verification gate and contact pipeline for the portfolio site.
// @BasePath        /
func main() {
	app.Run()
}
