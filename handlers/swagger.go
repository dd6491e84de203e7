package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-cms/content-api/internal/content"
	"github.com/portfolio-cms/content-api/internal/schema"
)

// RegisterSwagger registers the API documentation endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> OpenAPI document built from the record schemas
func RegisterSwagger(rg gin.IRouter, title string, media bool) {
	var (
		once sync.Once
		doc  gin.H
	)
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		once.Do(func() { doc = openAPIDocument(title, media) })
		c.JSON(http.StatusOK, doc)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Portfolio API: Swagger</title>
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

func openAPIDocument(title string, media bool) gin.H {
	schemas := gin.H{
		"Error": gin.H{"type": "object", "properties": gin.H{"error": gin.H{"type": "string"}}},
		"ValidationError": gin.H{
			"type": "object",
			"properties": gin.H{
				"error": gin.H{"type": "string"},
				"details": gin.H{"type": "array", "items": gin.H{
					"type":       "object",
					"properties": gin.H{"field": gin.H{"type": "string"}, "message": gin.H{"type": "string"}},
				}},
			},
		},
	}
	paths := gin.H{
		"/":       gin.H{"get": gin.H{"summary": "Service identity", "responses": gin.H{"200": gin.H{"description": "running message"}}}},
		"/test":   gin.H{"get": gin.H{"summary": "Store diagnostics", "responses": gin.H{"200": gin.H{"description": "diagnostic report, never fails"}}}},
		"/health": gin.H{"get": gin.H{"summary": "Liveness check", "responses": gin.H{"200": gin.H{"description": "healthy"}}}},
		"/ready":  gin.H{"get": gin.H{"summary": "Readiness check", "responses": gin.H{"200": gin.H{"description": "ready"}, "503": gin.H{"description": "store unavailable"}}}},
	}

	for _, k := range content.Kinds() {
		schemas[k.Name] = schemaObject(k.Schema)
		ref := gin.H{"$ref": "#/components/schemas/" + k.Name}

		created := gin.H{"inserted_id": gin.H{"type": "string"}}
		if k.Ack != "" {
			created["status"] = gin.H{"type": "string", "enum": []string{k.Ack}}
		}
		responses := gin.H{
			"200": gin.H{"description": "created", "content": jsonContent(gin.H{"type": "object", "properties": created})},
			"422": gin.H{"description": "validation failed", "content": jsonContent(gin.H{"$ref": "#/components/schemas/ValidationError"})},
			"500": gin.H{"description": "store failure", "content": jsonContent(gin.H{"$ref": "#/components/schemas/Error"})},
		}
		if len(k.Unique) > 0 {
			responses["409"] = gin.H{"description": "duplicate " + uniqueLabel(k), "content": jsonContent(gin.H{"$ref": "#/components/schemas/Error"})}
		}
		reqContent := jsonContent(ref)
		reqContent["application/json"].(gin.H)["example"] = k.Example

		ops := gin.H{
			"post": gin.H{
				"summary":     "Create " + k.Name,
				"tags":        []string{k.Path},
				"requestBody": gin.H{"required": true, "content": reqContent},
				"responses":   responses,
			},
		}
		if k.Listable {
			ops["get"] = gin.H{
				"summary": "List " + k.Name,
				"tags":    []string{k.Path},
				"responses": gin.H{
					"200": gin.H{"description": "all records", "content": jsonContent(gin.H{"type": "array", "items": ref})},
					"500": gin.H{"description": "store failure", "content": jsonContent(gin.H{"$ref": "#/components/schemas/Error"})},
				},
			}
		}
		paths["/api/"+k.Path] = ops
	}

	if media {
		paths["/api/media"] = gin.H{"post": gin.H{
			"summary": "Upload an image",
			"requestBody": gin.H{"content": gin.H{"multipart/form-data": gin.H{"schema": gin.H{
				"type":       "object",
				"properties": gin.H{"file": gin.H{"type": "string", "format": "binary"}},
			}}}},
			"responses": gin.H{
				"201": gin.H{"description": "stored; returns key, url and presigned_url"},
				"400": gin.H{"description": "missing or non-image file"},
				"413": gin.H{"description": "file too large"},
			},
		}}
		paths["/api/media/{key}"] = gin.H{"get": gin.H{
			"summary":    "Download an uploaded image",
			"parameters": []gin.H{{"name": "key", "in": "path", "required": true, "schema": gin.H{"type": "string"}}},
			"responses":  gin.H{"200": gin.H{"description": "image bytes"}, "404": gin.H{"description": "unknown key"}},
		}}
	}

	return gin.H{
		"openapi":    "3.0.0",
		"info":       gin.H{"title": title, "version": "v1.0.0"},
		"paths":      paths,
		"components": gin.H{"schemas": schemas},
	}
}

func jsonContent(s gin.H) gin.H {
	return gin.H{"application/json": gin.H{"schema": s}}
}

// schemaObject renders a schema table as an OpenAPI object schema.
func schemaObject(s *schema.Schema) gin.H {
	props := gin.H{}
	required := []string{}
	for _, f := range s.Fields() {
		var p gin.H
		switch f.Type {
		case schema.TypeStringList:
			p = gin.H{"type": "array", "items": stringSchema(f)}
		case schema.TypeStringMap:
			p = gin.H{"type": "object", "additionalProperties": gin.H{"type": "string"}}
		default:
			p = stringSchema(f)
		}
		if f.Nullable {
			p["nullable"] = true
		}
		props[f.Name] = p
		if f.Required {
			required = append(required, f.Name)
		}
	}
	obj := gin.H{"type": "object", "properties": props}
	if len(required) > 0 {
		obj["required"] = required
	}
	return obj
}

func stringSchema(f schema.Field) gin.H {
	p := gin.H{"type": "string"}
	switch f.Format {
	case schema.FormatEmail:
		p["format"] = "email"
	case schema.FormatURL:
		p["format"] = "uri"
	}
	if len(f.Enum) > 0 {
		p["enum"] = f.Enum
	}
	return p
}
