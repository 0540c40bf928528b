package chatbackend

// exampleContent is the static help text served from _example,
// documenting every file in the tree including usage, compact,
// prefill, and thinking.
const exampleContent = `9P chat filesystem usage
========================

Basic interaction:
  echo "What is 2+2?" > ask     # send a prompt
  cat ask                        # read the response

Configuration:
  cat model                      # current model name
  echo "claude-3-haiku-20240307" > model
  cat temperature                # sampling temperature (0.0-2.0)
  echo "0.5" > temperature
  cat thinking                   # extended thinking budget: max, off, or a token count
  echo "max" > thinking
  cat prefill                    # string prepended to the next assistant turn
  echo "[assistant] " > prefill

Conversation management:
  cat context                    # conversation history as JSON
  echo "You are a helpful assistant." > context
  echo "" > new                  # reset the conversation

Token usage:
  cat tokens                     # tokens used by the last response
  cat usage                      # cumulative/limit, e.g. 45000/200000
  echo 1 > compact               # force a manual compaction (blank writes are ignored)
  cat compact                    # result of the last compaction

Streaming:
  echo "Tell me a story" > stream/ask
  cat stream/chunk               # blocks, returns chunks as they arrive

Mounting (Linux/macOS):
  9pfuse host:port /mnt/chat
  mount_9p host:port /mnt/chat
`
