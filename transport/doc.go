// Package transport executes HTTP requests for the Easyship API client.
package transport
