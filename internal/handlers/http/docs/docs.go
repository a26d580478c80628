// Package docs swagger описание сервера фикстур.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/fixtures": {
            "get": {
                "produces": ["application/json"],
                "tags": ["fixtures"],
                "summary": "Список фикстур",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"type": "string"}}
                    }
                }
            }
        },
        "/mock_data/{path}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["fixtures"],
                "summary": "Получить фикстуру",
                "parameters": [
                    {"type": "string", "description": "путь фикстуры относительно корня", "name": "path", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"type": "string"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "tags": ["fixtures"],
                "summary": "Сохранить фикстуру",
                "parameters": [
                    {"type": "string", "description": "путь фикстуры относительно корня", "name": "path", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"type": "string"}}
                }
            }
        },
        "/ping": {
            "get": {
                "tags": ["health"],
                "summary": "Проверка хранилища",
                "responses": {
                    "200": {"description": "OK"},
                    "500": {"description": "Internal Server Error"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "apiMock fixture server",
	Description:      "Хранение и выдача фикстур apiMock.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
