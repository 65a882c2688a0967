package handlers

import "net/http"

// Landing serves a small HTML page describing the API.
func (h *SessionHandler) Landing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(landingHTML))
}

const landingHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Research Bot API</title>
    <style>
        body { font-family: Arial, sans-serif; max-width: 800px; margin: 0 auto; padding: 20px; line-height: 1.6; }
        h1 { color: #2a5298; }
        .endpoint { background: #f5f5f5; padding: 15px; border-radius: 5px; margin-bottom: 20px; }
        code { background: #e0e0e0; padding: 2px 5px; border-radius: 3px; }
    </style>
</head>
<body>
    <h1>Research Bot API</h1>
    <p>Your AI-powered research paper companion. Upload PDFs and ask questions to get detailed insights.</p>

    <h2>API Endpoints</h2>
    <div class="endpoint">
        <h3>POST /upload/{session_id}</h3>
        <p>Upload a research paper PDF for processing and analysis. Multipart field: <code>file</code>.</p>
    </div>
    <div class="endpoint">
        <h3>POST /ask/{session_id}</h3>
        <p>Ask questions about a previously uploaded paper. JSON body: <code>{"question": "..."}</code>.</p>
    </div>
    <div class="endpoint">
        <h3>GET /health</h3>
        <p>Check if the API is operational.</p>
    </div>

    <h2>Getting Started</h2>
    <p>1. Upload your research paper using the upload endpoint</p>
    <p>2. Use the same session ID to ask questions about the paper</p>
    <p>3. Receive detailed AI-generated answers based on the paper content</p>
</body>
</html>
`
