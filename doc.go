/*
Package hopstrip provides an HTTP proxy that removes
connection-specific header fields from backend responses.

Application backends behind an HTTP/2 capable load balancer often set
fields like Connection or Keep-Alive on their responses. These fields
describe a single HTTP/1.x connection and are forbidden on a
multiplexed, framed transport, so an intermediary relaying such a
response over HTTP/2 has to strip them. hopstrip sits between the
backend and the load balancer and does exactly that: it forwards
requests unchanged and removes the offending header fields from every
response before writing it downstream. Status code, body and all other
headers pass through untouched.

The core transform lives in the sanitize package and can be embedded
into other proxies directly, either through the filters packages or
with the proxy.Sanitize middleware. This package ties the pieces
together into a runnable proxy, see the Options documentation for the
available settings and cmd/hopstrip for the executable.
*/
package hopstrip
