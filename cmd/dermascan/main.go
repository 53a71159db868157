// Package main provides the dermascan CLI, which runs the skin analysis
// pipeline on local image files.
//
// Usage:
//
//	dermascan analyze --answers answers.yaml face1.jpg face2.jpg
//	dermascan analyze --answers answers.yaml --format markdown -o report.md face.jpg
package main

func main() {
	Execute()
}
