// Package tools describes the core operations as named, schema-described
// tools and dispatches calls by name. This is the surface an automation or
// AI layer consumes; the schemas preserve the session API's field names.
package tools

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/relayforge/relayforge/internal/remote"
	"github.com/relayforge/relayforge/internal/services"
)

// Registry maps tool names onto the session services.
type Registry struct {
	connector *services.Connector
	registry  *services.Registry
	executor  *services.Executor
	transfer  *services.Transfer
	extractor *services.LogExtractor
}

func NewRegistry(
	connector *services.Connector,
	registry *services.Registry,
	executor *services.Executor,
	transfer *services.Transfer,
	extractor *services.LogExtractor,
) *Registry {
	return &Registry{
		connector: connector,
		registry:  registry,
		executor:  executor,
		transfer:  transfer,
		extractor: extractor,
	}
}

// Definitions returns every tool in OpenAI-compatible function format.
func (r *Registry) Definitions() []map[string]interface{} {
	return []map[string]interface{}{
		r.connectTool(),
		r.disconnectTool(),
		r.executeTool(),
		r.uploadFileTool(),
		r.downloadFileTool(),
		r.extractByLineRangeTool(),
		r.extractByTimeRangeTool(),
	}
}

func (r *Registry) connectTool() map[string]interface{} {
	return map[string]interface{}{
		"type": "function",
		"function": map[string]interface{}{
			"name":        "connect",
			"description": "Open an authenticated SSH session to a host. Returns a sessionId used by every other tool.",
			"parameters": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"host": map[string]interface{}{
						"type":        "string",
						"description": "Hostname or IP address of the remote server.",
					},
					"port": map[string]interface{}{
						"type":        "integer",
						"description": "SSH port. Defaults to 22.",
					},
					"username": map[string]interface{}{
						"type":        "string",
						"description": "Login username.",
					},
					"password": map[string]interface{}{
						"type":        "string",
						"description": "Password for password authentication. Either password or privateKey is required.",
					},
					"privateKey": map[string]interface{}{
						"type":        "string",
						"description": "PEM private key for key authentication.",
					},
					"passphrase": map[string]interface{}{
						"type":        "string",
						"description": "Passphrase for an encrypted private key.",
					},
					"timeout": map[string]interface{}{
						"type":        "integer",
						"description": "Connect timeout in milliseconds. Defaults to 10000.",
					},
				},
				"required": []string{"host", "username"},
			},
		},
	}
}

func (r *Registry) disconnectTool() map[string]interface{} {
	return map[string]interface{}{
		"type": "function",
		"function": map[string]interface{}{
			"name":        "disconnect",
			"description": "Close a session. Returns true if the session existed and was removed.",
			"parameters": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sessionId": map[string]interface{}{
						"type":        "string",
						"description": "Id returned by connect.",
					},
				},
				"required": []string{"sessionId"},
			},
		},
	}
}

func (r *Registry) executeTool() map[string]interface{} {
	return map[string]interface{}{
		"type": "function",
		"function": map[string]interface{}{
			"name":        "execute",
			"description": "Run a shell command over a session and return stdout, stderr, and the exit code.",
			"parameters": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sessionId": map[string]interface{}{
						"type":        "string",
						"description": "Id returned by connect.",
					},
					"command": map[string]interface{}{
						"type":        "string",
						"description": "The shell command to execute (e.g. 'systemctl status nginx').",
					},
				},
				"required": []string{"sessionId", "command"},
			},
		},
	}
}

func (r *Registry) uploadFileTool() map[string]interface{} {
	return map[string]interface{}{
		"type": "function",
		"function": map[string]interface{}{
			"name":        "upload_file",
			"description": "Write content to a file on the remote host.",
			"parameters": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sessionId": map[string]interface{}{
						"type":        "string",
						"description": "Id returned by connect.",
					},
					"content": map[string]interface{}{
						"type":        "string",
						"description": "File content to write.",
					},
					"remotePath": map[string]interface{}{
						"type":        "string",
						"description": "Absolute destination path on the remote host.",
					},
				},
				"required": []string{"sessionId", "content", "remotePath"},
			},
		},
	}
}

func (r *Registry) downloadFileTool() map[string]interface{} {
	return map[string]interface{}{
		"type": "function",
		"function": map[string]interface{}{
			"name":        "download_file",
			"description": "Read a file from the remote host.",
			"parameters": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sessionId": map[string]interface{}{
						"type":        "string",
						"description": "Id returned by connect.",
					},
					"remotePath": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path of the file to read.",
					},
					"encoding": map[string]interface{}{
						"type":        "string",
						"description": "Content encoding: utf8 (default), base64, hex, or latin1.",
					},
				},
				"required": []string{"sessionId", "remotePath"},
			},
		},
	}
}

func (r *Registry) extractByLineRangeTool() map[string]interface{} {
	return map[string]interface{}{
		"type": "function",
		"function": map[string]interface{}{
			"name":        "extract_logs_by_line_range",
			"description": "Extract an inclusive line range from a remote log file. Omit endLine to read to the end of the file.",
			"parameters": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sessionId": map[string]interface{}{
						"type":        "string",
						"description": "Id returned by connect.",
					},
					"filePath": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path of the log file.",
					},
					"startLine": map[string]interface{}{
						"type":        "integer",
						"description": "First line to extract (1-based).",
					},
					"endLine": map[string]interface{}{
						"type":        "integer",
						"description": "Last line to extract, inclusive.",
					},
				},
				"required": []string{"sessionId", "filePath", "startLine"},
			},
		},
	}
}

func (r *Registry) extractByTimeRangeTool() map[string]interface{} {
	return map[string]interface{}{
		"type": "function",
		"function": map[string]interface{}{
			"name":        "extract_logs_by_time_range",
			"description": "Extract the lines of a remote log file timestamped within minutesRange minutes of targetTime. Untimestamped lines (e.g. stack traces) attach to the preceding in-window line.",
			"parameters": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sessionId": map[string]interface{}{
						"type":        "string",
						"description": "Id returned by connect.",
					},
					"filePath": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path of the log file.",
					},
					"targetTime": map[string]interface{}{
						"type":        "string",
						"description": "Center of the extraction window, parsed on the remote host (e.g. '2024-01-02 10:05:00').",
					},
					"timePattern": map[string]interface{}{
						"type":        "string",
						"description": "Extended regex that extracts the timestamp from a log line (e.g. '[0-9]{2}:[0-9]{2}:[0-9]{2}').",
					},
					"minutesRange": map[string]interface{}{
						"type":        "integer",
						"description": "Half-width of the window in minutes. Defaults to 5.",
					},
				},
				"required": []string{"sessionId", "filePath", "targetTime", "timePattern"},
			},
		},
	}
}

// Call dispatches a tool invocation by name with JSON arguments.
func (r *Registry) Call(name string, arguments json.RawMessage) (interface{}, error) {
	switch name {
	case "connect":
		var args struct {
			Host       string `json:"host"`
			Port       int    `json:"port"`
			Username   string `json:"username"`
			Password   string `json:"password"`
			PrivateKey string `json:"privateKey"`
			Passphrase string `json:"passphrase"`
			Timeout    int    `json:"timeout"`
		}
		if err := json.Unmarshal(arguments, &args); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		id, err := r.connector.Connect(remote.Config{
			Host:       args.Host,
			Port:       args.Port,
			User:       args.Username,
			Password:   args.Password,
			PrivateKey: args.PrivateKey,
			Passphrase: args.Passphrase,
			Timeout:    time.Duration(args.Timeout) * time.Millisecond,
		})
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"success": true, "sessionId": id}, nil

	case "disconnect":
		var args struct {
			SessionID string `json:"sessionId"`
		}
		if err := json.Unmarshal(arguments, &args); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		return r.connector.Disconnect(args.SessionID), nil

	case "execute":
		var args struct {
			SessionID string `json:"sessionId"`
			Command   string `json:"command"`
		}
		if err := json.Unmarshal(arguments, &args); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		return r.executor.Execute(args.SessionID, args.Command)

	case "upload_file":
		var args struct {
			SessionID  string `json:"sessionId"`
			Content    string `json:"content"`
			RemotePath string `json:"remotePath"`
		}
		if err := json.Unmarshal(arguments, &args); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		if err := r.transfer.Upload(args.SessionID, args.Content, args.RemotePath); err != nil {
			return nil, err
		}
		return map[string]interface{}{"success": true, "remotePath": args.RemotePath}, nil

	case "download_file":
		var args struct {
			SessionID  string `json:"sessionId"`
			RemotePath string `json:"remotePath"`
			Encoding   string `json:"encoding"`
		}
		if err := json.Unmarshal(arguments, &args); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		content, err := r.transfer.Download(args.SessionID, args.RemotePath, args.Encoding)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"success": true, "content": content}, nil

	case "extract_logs_by_line_range":
		var args struct {
			SessionID string `json:"sessionId"`
			FilePath  string `json:"filePath"`
			StartLine int    `json:"startLine"`
			EndLine   int    `json:"endLine"`
		}
		if err := json.Unmarshal(arguments, &args); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		if args.StartLine < 1 {
			return nil, fmt.Errorf("startLine must be >= 1")
		}
		return r.extractor.ExtractByLineRange(args.SessionID, args.FilePath, args.StartLine, args.EndLine)

	case "extract_logs_by_time_range":
		var args struct {
			SessionID    string `json:"sessionId"`
			FilePath     string `json:"filePath"`
			TargetTime   string `json:"targetTime"`
			TimePattern  string `json:"timePattern"`
			MinutesRange int    `json:"minutesRange"`
		}
		if err := json.Unmarshal(arguments, &args); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		if args.MinutesRange <= 0 {
			args.MinutesRange = 5
		}
		return r.extractor.ExtractByTimeRange(args.SessionID, args.FilePath, args.TargetTime, args.TimePattern, args.MinutesRange)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}
