// Package swagger holds the OpenAPI document served under /swagger.
//
// Running go generate in cmd/orgblog-server rebuilds this file from the
// handler annotations and adds the model definitions.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "OrgBlog Support",
            "url": "https://github.com/mikepea/orgblog"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/admin/users": {
            "get": {
                "summary": "List users",
                "tags": [
                    "admin"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Search email or name",
                        "name": "q",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Filter by role",
                        "name": "role",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Filter by organization",
                        "name": "org_id",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "type": "object",
                                "title": "UserResponse"
                            }
                        }
                    },
                    "403": {
                        "description": "Super admin only",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/admin/users/{id}": {
            "get": {
                "summary": "Get a user",
                "tags": [
                    "admin"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "User ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "UserResponse"
                        }
                    },
                    "404": {
                        "description": "User not found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "put": {
                "summary": "Update a user",
                "tags": [
                    "admin"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "User ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Fields to change",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "title": "UpdateUserRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "UserResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid request",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "delete": {
                "summary": "Delete a user",
                "tags": [
                    "admin"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "User ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "User deleted",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "User not found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/admin/stats": {
            "get": {
                "summary": "Platform statistics",
                "tags": [
                    "admin"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "Platform"
                        }
                    }
                }
            }
        },
        "/auth/register": {
            "post": {
                "summary": "Register a new user",
                "description": "Create a new global, unverified user account and receive a JWT token",
                "tags": [
                    "auth"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Registration details",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "title": "RegisterRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "AuthResponse"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Email already registered",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/auth/login": {
            "post": {
                "summary": "Login",
                "description": "Authenticate with email and password to receive a JWT token",
                "tags": [
                    "auth"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Login credentials",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "title": "LoginRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "AuthResponse"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "401": {
                        "description": "Invalid credentials",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/auth/me": {
            "get": {
                "summary": "Get current user",
                "description": "Get the authenticated user's profile",
                "tags": [
                    "auth"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "UserResponse"
                        }
                    },
                    "401": {
                        "description": "Authentication required",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "put": {
                "summary": "Update profile",
                "tags": [
                    "auth"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Profile fields",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "title": "UpdateProfileRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "UserResponse"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "401": {
                        "description": "Authentication required",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/auth/password": {
            "put": {
                "summary": "Change password",
                "tags": [
                    "auth"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Current and new password",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "title": "ChangePasswordRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Password updated",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "401": {
                        "description": "Current password is incorrect",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/auth/logout": {
            "post": {
                "summary": "Logout",
                "description": "Logout the current user (client-side token invalidation)",
                "tags": [
                    "auth"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Logged out successfully",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/blogs": {
            "get": {
                "summary": "List blogs",
                "description": "List published blogs, pinned first, then newest",
                "tags": [
                    "blogs"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Filter by organization",
                        "name": "org_id",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Filter by department",
                        "name": "dept_id",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Filter by author",
                        "name": "author_id",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Filter by tag name",
                        "name": "tag",
                        "in": "query"
                    },
                    {
                        "type": "boolean",
                        "description": "Only featured blogs",
                        "name": "featured",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Search title, excerpt and content",
                        "name": "q",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Max results (default 20, max 100)",
                        "name": "limit",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Offset for pagination",
                        "name": "offset",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "type": "object",
                                "title": "BlogResponse"
                            }
                        }
                    }
                }
            },
            "post": {
                "summary": "Create a blog",
                "description": "Create a blog as a verified member. The blog belongs to the author's organization and department.",
                "tags": [
                    "blogs"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Blog details",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "title": "CreateBlogRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "BlogResponse"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Verified membership required",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Slug already taken",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/blogs/mine": {
            "get": {
                "summary": "List own blogs",
                "tags": [
                    "blogs"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Max results (default 20, max 100)",
                        "name": "limit",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Offset for pagination",
                        "name": "offset",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "type": "object",
                                "title": "BlogResponse"
                            }
                        }
                    }
                }
            }
        },
        "/blogs/{id}": {
            "get": {
                "summary": "Get a blog",
                "tags": [
                    "blogs"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Blog ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "BlogResponse"
                        }
                    },
                    "404": {
                        "description": "Blog not found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "put": {
                "summary": "Update a blog",
                "description": "Update a blog as its author or an admin with jurisdiction. Only admins may set featured and pinned.",
                "tags": [
                    "blogs"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Blog ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Fields to update",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "title": "UpdateBlogRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "BlogResponse"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Not allowed to edit this blog",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Blog not found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "delete": {
                "summary": "Delete a blog",
                "tags": [
                    "blogs"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Blog ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Blog deleted",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Not allowed to delete this blog",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Blog not found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/blogs/slug/{slug}": {
            "get": {
                "summary": "Get a blog by slug",
                "tags": [
                    "blogs"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Blog slug",
                        "name": "slug",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "BlogResponse"
                        }
                    },
                    "404": {
                        "description": "Blog not found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/blogs/{id}/comments": {
            "get": {
                "summary": "List comments",
                "tags": [
                    "comments"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Blog ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "type": "object",
                                "title": "CommentResponse"
                            }
                        }
                    },
                    "404": {
                        "description": "Blog not found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "post": {
                "summary": "Comment on a blog",
                "description": "Verified members may comment on blogs of organizations that have comments enabled",
                "tags": [
                    "comments"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Blog ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Comment text",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "title": "CommentRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "CommentResponse"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Not allowed to comment",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Blog not found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/comments/{id}": {
            "put": {
                "summary": "Edit a comment",
                "description": "Only the comment's author may edit it",
                "tags": [
                    "comments"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Comment ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "New text",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "title": "CommentRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "CommentResponse"
                        }
                    },
                    "403": {
                        "description": "Not the author",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Comment not found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "delete": {
                "summary": "Delete a comment",
                "description": "The comment's author or an admin with jurisdiction over the blog may delete it",
                "tags": [
                    "comments"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Comment ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Comment deleted",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Not allowed",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Comment not found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/organizations/{id}/departments": {
            "get": {
                "summary": "List departments",
                "tags": [
                    "departments"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Organization ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "type": "object",
                                "title": "DeptResponse"
                            }
                        }
                    },
                    "404": {
                        "description": "Organization not found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "post": {
                "summary": "Create a department",
                "description": "Create a department (org admin of the organization or super admin)",
                "tags": [
                    "departments"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Organization ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Department details",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "title": "CreateDeptRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "DeptResponse"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Admin access required",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Organization not found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Department name taken",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/departments/{id}": {
            "get": {
                "summary": "Get a department",
                "tags": [
                    "departments"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Department ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "DeptResponse"
                        }
                    },
                    "404": {
                        "description": "Department not found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "put": {
                "summary": "Update a department",
                "description": "Update a department (its dept admin, the org admin or super admin)",
                "tags": [
                    "departments"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Department ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Fields to update",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "title": "UpdateDeptRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "DeptResponse"
                        }
                    },
                    "403": {
                        "description": "Admin access required",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Department not found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Department name taken",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "delete": {
                "summary": "Delete a department",
                "description": "Delete a department, its blogs and pending requests. Members become unverified global users.",
                "tags": [
                    "departments"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Department ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Department deleted",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Admin access required",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Department not found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/departments/{id}/admins": {
            "get": {
                "summary": "List department admins",
                "tags": [
                    "departments"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Department ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "type": "object",
                                "title": "AdminResponse"
                            }
                        }
                    },
                    "404": {
                        "description": "Department not found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "post": {
                "summary": "Assign a department admin",
                "description": "Promote a verified member of the department to dept_admin (org admin of the organization or super admin)",
                "tags": [
                    "departments"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Department ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "User to promote",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "title": "AdminRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "AdminResponse"
                        }
                    },
                    "403": {
                        "description": "Admin access required",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Department or user not found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "User is not a member or has a higher role",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/departments/{id}/admins/{userId}": {
            "delete": {
                "summary": "Remove a department admin",
                "tags": [
                    "departments"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Department ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "User ID",
                        "name": "userId",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Admin removed",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Admin access required",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not an admin of this department",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/departments/{id}/stats": {
            "get": {
                "summary": "Department stats",
                "tags": [
                    "departments"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Department ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "DeptStats"
                        }
                    },
                    "403": {
                        "description": "Admin access required",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Department not found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/blogs/{id}/like": {
            "post": {
                "summary": "Toggle like",
                "description": "Like or unlike a blog. Any authenticated user may like.",
                "tags": [
                    "likes"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Blog ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "Status"
                        }
                    },
                    "401": {
                        "description": "Authentication required",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Blog not found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "get": {
                "summary": "Like status",
                "tags": [
                    "likes"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Blog ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "Status"
                        }
                    },
                    "404": {
                        "description": "Blog not found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/blogs/{id}/likes": {
            "get": {
                "summary": "List likers",
                "tags": [
                    "likes"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Blog ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "Max results (default 50, max 100)",
                        "name": "limit",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Offset for pagination",
                        "name": "offset",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "type": "object",
                                "title": "LikerResponse"
                            }
                        }
                    },
                    "404": {
                        "description": "Blog not found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/organizations": {
            "get": {
                "summary": "List organizations",
                "description": "List organizations, optionally filtered by name",
                "tags": [
                    "organizations"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Name contains",
                        "name": "q",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "type": "object",
                                "title": "OrgResponse"
                            }
                        }
                    }
                }
            },
            "post": {
                "summary": "Create an organization",
                "description": "Create a new organization (super admin only)",
                "tags": [
                    "organizations"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Organization details",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "title": "CreateOrgRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "OrgResponse"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Super admin access required",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Name already taken",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/organizations/{id}": {
            "get": {
                "summary": "Get an organization",
                "tags": [
                    "organizations"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Organization ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "OrgResponse"
                        }
                    },
                    "404": {
                        "description": "Organization not found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "put": {
                "summary": "Update an organization",
                "description": "Update an organization (its org admin or super admin)",
                "tags": [
                    "organizations"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Organization ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Fields to update",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "title": "UpdateOrgRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "OrgResponse"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Admin access required",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Organization not found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Name already taken",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "delete": {
                "summary": "Delete an organization",
                "description": "Delete an organization and cascade through its departments (super admin only)",
                "tags": [
                    "organizations"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Organization ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Organization deleted",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Super admin access required",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Organization not found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/organizations/{id}/admin": {
            "put": {
                "summary": "Assign the organization admin",
                "description": "Promote a verified member of the organization to org_admin and record them as its primary admin (super admin only)",
                "tags": [
                    "organizations"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Organization ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "User to promote",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "title": "AssignAdminRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "OrgResponse"
                        }
                    },
                    "403": {
                        "description": "Super admin access required",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Organization or user not found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "User is not a member",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/organizations/{id}/members": {
            "get": {
                "summary": "List organization members",
                "tags": [
                    "organizations"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Organization ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "type": "object",
                                "title": "MemberResponse"
                            }
                        }
                    },
                    "403": {
                        "description": "Admin access required",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Organization not found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/organizations/{id}/stats": {
            "get": {
                "summary": "Organization stats",
                "tags": [
                    "organizations"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Organization ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "OrgStats"
                        }
                    },
                    "403": {
                        "description": "Admin access required",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Organization not found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/tags": {
            "get": {
                "summary": "List popular tags",
                "description": "Get tags with the number of published blogs using each",
                "tags": [
                    "tags"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Only count blogs of this organization",
                        "name": "org_id",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Max results (default 50, max 100)",
                        "name": "limit",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "type": "object",
                                "title": "TagResponse"
                            }
                        }
                    }
                }
            }
        },
        "/uploads/{category}": {
            "post": {
                "summary": "Upload an image",
                "description": "Store a JPEG, PNG, GIF or WebP image of at most 5MB and return its URL",
                "tags": [
                    "uploads"
                ],
                "consumes": [
                    "multipart/form-data"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "blogs, avatars, organizations or departments",
                        "name": "category",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "file",
                        "description": "Image file",
                        "name": "image",
                        "in": "formData",
                        "required": true
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "UploadResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid file",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Not allowed to upload into this category",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/verifications": {
            "post": {
                "summary": "Request verification",
                "description": "Ask to become a verified member of an organization and department",
                "tags": [
                    "verifications"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Target organization and department",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "title": "CreateRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "Verification"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Organization or department not found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Already verified or request pending",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "get": {
                "summary": "List reviewable verification requests",
                "tags": [
                    "verifications"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "pending, approved or rejected",
                        "name": "status",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "type": "object",
                                "title": "Verification"
                            }
                        }
                    },
                    "403": {
                        "description": "Admin access required",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/verifications/mine": {
            "get": {
                "summary": "List own verification requests",
                "tags": [
                    "verifications"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "type": "object",
                                "title": "Verification"
                            }
                        }
                    }
                }
            }
        },
        "/verifications/{id}/review": {
            "post": {
                "summary": "Review a verification request",
                "tags": [
                    "verifications"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Verification ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Decision and note",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "title": "ReviewRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "Verification"
                        }
                    },
                    "403": {
                        "description": "No jurisdiction",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Verification request not found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Already reviewed",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/verifications/{id}/approve": {
            "put": {
                "summary": "Approve a verification request",
                "tags": [
                    "verifications"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Verification ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Review note",
                        "name": "request",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "type": "object",
                            "title": "NoteRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "Verification"
                        }
                    }
                }
            }
        },
        "/verifications/{id}/reject": {
            "put": {
                "summary": "Reject a verification request",
                "tags": [
                    "verifications"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Verification ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Review note",
                        "name": "request",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "type": "object",
                            "title": "NoteRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "title": "Verification"
                        }
                    }
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT token. Format: \"Bearer {token}\"",
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
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "OrgBlog API",
	Description:      "Multi-tenant blogging for organizations and their departments, with verified membership and moderation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
