package proxy

import (
	"net/http"
)

type filterContext struct {
	responseWriter http.ResponseWriter
	request        *http.Request
	response       *http.Response
	served         bool
	stateBag       map[string]interface{}
}

func (c *filterContext) ResponseWriter() http.ResponseWriter { return c.responseWriter }
func (c *filterContext) Request() *http.Request              { return c.request }
func (c *filterContext) Response() *http.Response            { return c.response }
func (c *filterContext) Served() bool                        { return c.served }
func (c *filterContext) MarkServed()                         { c.served = true }
func (c *filterContext) StateBag() map[string]interface{}    { return c.stateBag }
