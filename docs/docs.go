// Package docs holds the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag/v2"

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
		"/auth/login": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Sign in with email and password",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Credentials",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.LoginRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"401": {
						"description": "Invalid credentials",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"429": {
						"description": "Too many attempts",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				}
			}
		},
		"/auth/refresh": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Exchange a refresh token for a new pair",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Refresh token",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.RefreshRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"401": {
						"description": "Invalid token",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				}
			}
		},
		"/auth/logout": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Revoke the current token or every session",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/auth/me": {
			"get": {
				"tags": [
					"auth"
				],
				"summary": "Current user profile",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/catalog/products/{id}": {
			"get": {
				"tags": [
					"catalog"
				],
				"summary": "Product detail",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Identifier",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				}
			}
		},
		"/catalog/customizations": {
			"get": {
				"tags": [
					"catalog"
				],
				"summary": "Active customizations",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				}
			}
		},
		"/cart": {
			"get": {
				"tags": [
					"cart"
				],
				"summary": "Current cart with totals",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"delete": {
				"tags": [
					"cart"
				],
				"summary": "Empty the cart",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/cart/items": {
			"post": {
				"tags": [
					"cart"
				],
				"summary": "Add a product to the cart",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/cart/items/{id}": {
			"patch": {
				"tags": [
					"cart"
				],
				"summary": "Change the quantity of a cart line",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Identifier",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"delete": {
				"tags": [
					"cart"
				],
				"summary": "Remove a cart line",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Identifier",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/cart/items/{id}/customizations": {
			"post": {
				"tags": [
					"cart"
				],
				"summary": "Attach a customization to a cart line",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Identifier",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/orders": {
			"post": {
				"tags": [
					"checkout"
				],
				"summary": "Place an order from the cart",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Empty cart or invalid input",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/orders/{id}/cancel": {
			"post": {
				"tags": [
					"checkout"
				],
				"summary": "Cancel a pending order",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Identifier",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/orders/{id}/invoice": {
			"get": {
				"tags": [
					"invoice"
				],
				"summary": "Order invoice",
				"produces": [
					"text/html",
					"application/pdf"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Identifier",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"description": "html or pdf",
						"name": "format",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"503": {
						"description": "PDF rendering disabled",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/admin/stats": {
			"get": {
				"tags": [
					"admin"
				],
				"summary": "Dashboard summary",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/admin/orders/{id}": {
			"patch": {
				"tags": [
					"admin"
				],
				"summary": "Update order status, payment status or notes",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Identifier",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"409": {
						"description": "Version conflict",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/admin/orders/bulk": {
			"post": {
				"tags": [
					"admin"
				],
				"summary": "Bulk order status change",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/admin/orders/{id}/cancel": {
			"post": {
				"tags": [
					"admin"
				],
				"summary": "Cancel an order and its payment",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Identifier",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/admin/orders/{id}/sync-payment": {
			"post": {
				"tags": [
					"admin"
				],
				"summary": "Push the order payment status onto its payment",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Identifier",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/admin/orders/{id}/cash-received": {
			"post": {
				"tags": [
					"admin"
				],
				"summary": "Record cash on delivery",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Identifier",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/admin/orders/{id}/invoice": {
			"get": {
				"tags": [
					"invoice"
				],
				"summary": "Order invoice",
				"produces": [
					"text/html",
					"application/pdf"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Identifier",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/admin/payments/bulk": {
			"post": {
				"tags": [
					"admin"
				],
				"summary": "Bulk payment status change",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/admin/payments/{id}/validate": {
			"post": {
				"tags": [
					"admin"
				],
				"summary": "Validate a payment and mark its order paid",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Identifier",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/admin/reconciliation/report": {
			"get": {
				"tags": [
					"admin"
				],
				"summary": "Order/payment consistency report",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "json or xlsx",
						"name": "format",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/admin/reconciliation/fix-amounts": {
			"post": {
				"tags": [
					"admin"
				],
				"summary": "Align payment amounts on order totals",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/admin/reconciliation/recalculate-totals": {
			"post": {
				"tags": [
					"admin"
				],
				"summary": "Recalculate order totals from their lines",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/admin/products/{id}/stock": {
			"put": {
				"tags": [
					"admin"
				],
				"summary": "Set product stock",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Identifier",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		}
	},
	"definitions": {
		"dto.ErrorInfo": {
			"type": "object",
			"properties": {
				"code": {
					"type": "string"
				},
				"message": {
					"type": "string"
				},
				"request_id": {
					"type": "string"
				},
				"timestamp": {
					"type": "integer"
				}
			}
		},
		"dto.Response": {
			"type": "object",
			"properties": {
				"success": {
					"type": "boolean"
				},
				"data": {},
				"error": {
					"$ref": "#/definitions/dto.ErrorInfo"
				}
			}
		},
		"handler.LoginRequest": {
			"type": "object",
			"required": [
				"email",
				"password"
			],
			"properties": {
				"email": {
					"type": "string"
				},
				"password": {
					"type": "string"
				}
			}
		},
		"handler.RefreshRequest": {
			"type": "object",
			"required": [
				"refresh_token"
			],
			"properties": {
				"refresh_token": {
					"type": "string"
				}
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Maillots Storefront API",
	Description:      "Football jersey storefront: catalog, cart, checkout and back office.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
