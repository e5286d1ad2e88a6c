package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers the OpenAPI endpoints for the posts API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>blogdraft - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "blogdraft", "version": "v0.1.0" },
  "components": {
    "schemas": {
      "Draft": {"type":"object","properties":{"id":{"type":"string"},"title":{"type":"string"},"tags":{"type":"string","description":"comma separated"},"content":{"type":"string","description":"HTML"},"published":{"type":"boolean"},"preview":{"type":"boolean","description":"editor is showing the rendered preview"}}},
      "Post": {"type":"object","properties":{"id":{"type":"string"},"title":{"type":"string"},"displayTitle":{"type":"string"},"tags":{"type":"array","items":{"type":"string"}},"contentHtml":{"type":"string"},"images":{"type":"array","items":{"type":"string"}},"published":{"type":"boolean"},"updatedAt":{"type":"integer","format":"int64"}}}
    }
  },
  "paths": {
    "/api/posts": {
      "get": { "summary": "List posts, newest first", "responses": { "200": { "description": "posts" } } },
      "post": { "summary": "Save draft or publish", "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Draft"}}}}, "responses": { "200": { "description": "saved post" }, "503": { "description": "storage failure, draft echoed back" } } }
    },
    "/api/posts/{id}": {
      "get": { "summary": "Get one post", "responses": { "200": { "description": "post" }, "404": { "description": "not found" } } },
      "delete": { "summary": "Delete a post", "responses": { "204": { "description": "deleted or absent" } } }
    },
    "/api/posts/{id}/export/{format}": {
      "get": { "summary": "Download a stored post as json, html, docx or pdf", "responses": { "200": { "description": "attachment" }, "400": { "description": "unknown format" }, "404": { "description": "not found" }, "422": { "description": "conversion failed" } } }
    },
    "/api/editor/{id}": {
      "get": { "summary": "Open the editor on a post, or a new draft when it does not exist", "responses": { "200": { "description": "draft" } } }
    },
    "/api/editor/clear": {
      "post": { "summary": "Empty the draft's title, tags and content, keeping its id", "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Draft"}}}}, "responses": { "200": { "description": "cleared draft" } } }
    },
    "/api/editor/preview": {
      "post": { "summary": "Toggle preview; entering preview returns the rendered html", "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Draft"}}}}, "responses": { "200": { "description": "draft, preview state and html" }, "422": { "description": "render failed" } } }
    },
    "/api/export/{format}": {
      "post": { "summary": "Download the open draft", "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Draft"}}}}, "responses": { "200": { "description": "attachment" }, "422": { "description": "conversion failed" } } }
    },
    "/api/export/{format}/save": {
      "post": { "summary": "Save the open draft to export storage", "responses": { "201": { "description": "saved" }, "202": { "description": "rendering in background" } } }
    },
    "/api/images": {
      "post": { "summary": "Convert an uploaded image to a data URI, optionally spliced into content at offset", "responses": { "200": { "description": "data URI, plus content when offset was sent" }, "400": { "description": "missing image or bad offset" }, "415": { "description": "not an image" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
