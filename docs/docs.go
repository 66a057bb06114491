// Package docs holds the OpenAPI document served under /swagger.
// Regenerate it with go generate ./cmd/server.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "email": "support@demony.app"
        },
        "license": {
            "name": "MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/signup": {
            "post": {
                "tags": [
                    "auth"
                ],
                "summary": "Sign up",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Request body",
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            }
        },
        "/auth/login": {
            "post": {
                "tags": [
                    "auth"
                ],
                "summary": "Log in",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Request body",
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            }
        },
        "/me": {
            "get": {
                "tags": [
                    "users"
                ],
                "summary": "Current user",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/me/kyc": {
            "post": {
                "tags": [
                    "users"
                ],
                "summary": "Submit KYC",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "202": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Request body",
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/projects": {
            "get": {
                "tags": [
                    "projects"
                ],
                "summary": "List active projects",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "projects"
                ],
                "summary": "Submit project",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Request body",
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/projects/mine": {
            "get": {
                "tags": [
                    "projects"
                ],
                "summary": "List own projects",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/projects/{id}": {
            "get": {
                "tags": [
                    "projects"
                ],
                "summary": "Get project",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/projects/{id}/resubmit": {
            "put": {
                "tags": [
                    "projects"
                ],
                "summary": "Resubmit project",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Request body",
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/wallet/balance": {
            "get": {
                "tags": [
                    "wallet"
                ],
                "summary": "Wallet balance",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/wallet/transactions": {
            "get": {
                "tags": [
                    "wallet"
                ],
                "summary": "Wallet journal",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/wallet/deposit/initialize": {
            "post": {
                "tags": [
                    "wallet"
                ],
                "summary": "Start deposit",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Request body",
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/wallet/deposit/verify/{reference}": {
            "get": {
                "tags": [
                    "wallet"
                ],
                "summary": "Verify deposit",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "reference",
                        "name": "reference",
                        "in": "path",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/wallet/webhook": {
            "post": {
                "tags": [
                    "wallet"
                ],
                "summary": "Gateway webhook",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                }
            }
        },
        "/investments": {
            "post": {
                "tags": [
                    "investments"
                ],
                "summary": "Invest from wallet",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Request body",
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/investments/checkout": {
            "post": {
                "tags": [
                    "investments"
                ],
                "summary": "Invest through the gateway",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Request body",
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/investments/verify/{reference}": {
            "get": {
                "tags": [
                    "investments"
                ],
                "summary": "Verify investment payment",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "reference",
                        "name": "reference",
                        "in": "path",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/investments/my": {
            "get": {
                "tags": [
                    "investments"
                ],
                "summary": "List own investments",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/investments/{id}": {
            "get": {
                "tags": [
                    "investments"
                ],
                "summary": "Get investment",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/withdrawals": {
            "post": {
                "tags": [
                    "withdrawals"
                ],
                "summary": "Request withdrawal",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Request body",
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/withdrawals/my": {
            "get": {
                "tags": [
                    "withdrawals"
                ],
                "summary": "List own withdrawals",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/withdrawals/{id}": {
            "delete": {
                "tags": [
                    "withdrawals"
                ],
                "summary": "Cancel withdrawal",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/portfolio": {
            "get": {
                "tags": [
                    "portfolio"
                ],
                "summary": "Portfolio summary",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/portfolio/earnings": {
            "get": {
                "tags": [
                    "portfolio"
                ],
                "summary": "Profit history",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/admin/users": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "List users",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/admin/users/{id}/kyc": {
            "post": {
                "tags": [
                    "admin"
                ],
                "summary": "Review KYC",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Request body",
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/admin/users/{id}/status": {
            "post": {
                "tags": [
                    "admin"
                ],
                "summary": "Suspend or reinstate user",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Request body",
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/admin/projects": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "List projects",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            },
            "post": {
                "tags": [
                    "admin"
                ],
                "summary": "Create project",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Request body",
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/admin/projects/{id}": {
            "put": {
                "tags": [
                    "admin"
                ],
                "summary": "Update project",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Request body",
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "admin"
                ],
                "summary": "Remove project",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/admin/projects/{id}/review": {
            "post": {
                "tags": [
                    "admin"
                ],
                "summary": "Review project",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Request body",
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/admin/projects/{id}/status": {
            "put": {
                "tags": [
                    "admin"
                ],
                "summary": "Set project status",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Request body",
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/admin/projects/{id}/distribute-profits": {
            "post": {
                "tags": [
                    "admin"
                ],
                "summary": "Distribute profits",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Request body",
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/admin/withdrawals": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "List withdrawals",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/admin/withdrawals/{id}/process": {
            "post": {
                "tags": [
                    "admin"
                ],
                "summary": "Process withdrawal",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Request body",
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/admin/profit-runs/{runID}": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "Get profit run",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "runID",
                        "name": "runID",
                        "in": "path",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/admin/reports/profit-splits": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "Profit split audit",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/admin/stats": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "Platform stats",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "security": [
                    {
                        "Bearer": []
                    }
                ]
            }
        },
        "/admin/reports/financial": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "Financial report",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "security": [
                    {
                        "Bearer": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Period start, YYYY-MM-DD or RFC 3339",
                        "name": "from",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Period end, exclusive",
                        "name": "to",
                        "in": "query"
                    }
                ]
            }
        },
        "/admin/users/{id}": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "User detail",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "security": [
                    {
                        "Bearer": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "User ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "Transaction page",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Transactions per page",
                        "name": "limit",
                        "in": "query"
                    }
                ]
            }
        },
        "/admin/projects/{id}/investments": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "Project investments",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/common.Response"
                        }
                    },
                    "default": {
                        "description": "Problem",
                        "schema": {
                            "$ref": "#/definitions/common.ProblemDetails"
                        }
                    }
                },
                "security": [
                    {
                        "Bearer": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Project ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "pending_payment, active or payment_failed",
                        "name": "status",
                        "in": "query"
                    }
                ]
            }
        }
    },
    "definitions": {
        "common.Response": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "integer"
                },
                "message": {
                    "type": "string"
                },
                "data": {}
            }
        },
        "common.ProblemDetails": {
            "type": "object",
            "properties": {
                "type": {
                    "type": "string"
                },
                "title": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                },
                "detail": {
                    "type": "string"
                },
                "instance": {
                    "type": "string"
                },
                "errors": {}
            }
        }
    },
    "securityDefinitions": {
        "Bearer": {
            "description": "\"Enter your Bearer token in the format: ` + "`" + `Bearer {token}` + "`" + `\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:3000",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Demony API",
	Description:      "Crowd-investment ledger: wallets, investments, withdrawals and profit distribution.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
