// Package openai implements the ai interfaces against OpenAI-compatible
// HTTP APIs. It works with the hosted OpenAI service as well as local
// servers that speak the same protocol.
package openai
