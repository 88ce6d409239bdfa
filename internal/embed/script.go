package embed

import (
	"bytes"
	"fmt"
	"net/http"
	"text/template"

	"github.com/glowbot/spa-widget-platform/pkg/logging"
)

// loaderScript is the browser-side rendition of the bootstrap sequence,
// served to host pages as /bot.js. It mirrors Loader: double-init guard,
// tenant id precedence, base URL derivation, shadow-isolated mount, and the
// self-healing triggers.
const loaderScript = `(function () {
  'use strict';

  if (window.__SPA_BOT_LOADED) {
    console.warn('[SpaBot] Widget already loaded');
    return;
  }
  window.__SPA_BOT_LOADED = true;

  var currentScript = document.currentScript ||
    document.querySelector('script[src*="bot.js"]') ||
    document.scripts[document.scripts.length - 1];

  if (!currentScript) {
    console.error('[SpaBot] Could not find script element');
    return;
  }

  var scriptSrc = currentScript.src || currentScript.getAttribute('src') || '';
  var urlParams = new URLSearchParams(scriptSrc.split('?')[1] || '');
  var spaId =
    urlParams.get('spa') ||
    currentScript.getAttribute('data-spa') ||
    window.{{.TenantGlobal}} ||
    null;

  if (!spaId) {
    console.error('[SpaBot] Missing spaId. Please provide spaId in script URL: bot.js?spa=YOUR_SPA_ID');
    return;
  }

  var baseUrl = '';
  if (currentScript.dataset && currentScript.dataset.base) {
    baseUrl = currentScript.dataset.base;
  } else if (scriptSrc) {
    var url = new URL(scriptSrc);
    baseUrl = url.protocol + '//' + url.host + url.pathname.replace(/\/bot\.js$/, '');
  } else {
    baseUrl = window.location.origin;
  }
  baseUrl = baseUrl.replace(/\/$/, '');

  if (document.getElementById('{{.ContainerID}}')) {
    console.warn('[SpaBot] Widget container already exists');
    return;
  }

  var criticalProps = {
{{- range $prop, $value := .CriticalStyles}}
    '{{$prop}}': '{{$value}}',
{{- end}}
  };

  function initWidget() {
    var hostContainer = document.createElement('div');
    hostContainer.id = '{{.ContainerID}}';
    hostContainer.setAttribute('data-spa-id', spaId);
    hostContainer.setAttribute('data-spa-bot-widget', 'true');
    hostContainer.style.cssText = 'position:fixed;bottom:0;right:0;width:400px;height:600px;max-width:100vw;max-height:100vh;';
    Object.keys(criticalProps).forEach(function (prop) {
      hostContainer.style.setProperty(prop, criticalProps[prop], 'important');
    });

    var shadowRoot;
    try {
      shadowRoot = hostContainer.attachShadow({ mode: 'open' });
    } catch (e) {
      console.warn('[SpaBot] Shadow DOM not supported, using regular DOM');
      shadowRoot = hostContainer;
    }

    var shadowContainer = document.createElement('div');
    shadowContainer.id = 'spa-bot-shadow-container';
    shadowContainer.style.cssText = 'position:fixed;bottom:0;right:0;width:400px;height:600px;z-index:2147483647;pointer-events:auto;';

    var iframe = document.createElement('iframe');
    iframe.src = baseUrl + '?spa=' + encodeURIComponent(spaId);
    iframe.setAttribute('frameborder', '0');
    iframe.setAttribute('scrolling', 'no');
    iframe.setAttribute('title', 'Spa Booking Chatbot');
    iframe.style.cssText = 'border:none;width:100%;height:100%;position:absolute;top:0;left:0;pointer-events:auto;';

    iframe.onerror = function () {
      console.error('[SpaBot] Failed to load iframe:', iframe.src);
      shadowContainer.innerHTML = '<div style="position:absolute;top:50%;left:50%;transform:translate(-50%,-50%);background:white;padding:20px;border-radius:8px;text-align:center;color:#666;font-family:Arial,sans-serif;font-size:14px;"><p>Chatbot temporarily unavailable</p><p style="font-size:12px;margin-top:8px;color:#999;">Please try again later</p></div>';
    };

    shadowContainer.appendChild(iframe);
    if (shadowRoot !== hostContainer) {
      shadowRoot.appendChild(shadowContainer);
    } else {
      hostContainer.appendChild(shadowContainer);
    }

    if (hostContainer.parentNode) {
      hostContainer.parentNode.removeChild(hostContainer);
    }
    document.body.appendChild(hostContainer);

    var ensureTopPosition = function () {
      if (hostContainer.parentNode !== document.body) {
        document.body.appendChild(hostContainer);
      }
      Object.keys(criticalProps).forEach(function (prop) {
        if (hostContainer.style.getPropertyValue(prop) !== criticalProps[prop]) {
          hostContainer.style.setProperty(prop, criticalProps[prop], 'important');
        }
      });
    };

    var observer = new MutationObserver(function (mutations) {
      mutations.forEach(function (mutation) {
        if (mutation.type === 'childList') {
          mutation.removedNodes.forEach(function (node) {
            if (node === hostContainer || (node.nodeType === 1 && node.contains && node.contains(hostContainer))) {
              console.warn('[SpaBot] Container was removed, re-adding');
              document.body.appendChild(hostContainer);
            }
          });
        }
        ensureTopPosition();
      });
    });
    observer.observe(document.body, { childList: true, subtree: false });
    observer.observe(hostContainer, { attributes: true, attributeFilter: ['style', 'class', 'id'] });

    ['scroll', 'resize', 'touchmove', 'wheel'].forEach(function (event) {
      window.addEventListener(event, ensureTopPosition, { passive: true, capture: true });
    });

    var rafId;
    var checkCount = 0;
    var maxChecks = {{.MaxFastChecks}};
    var checkPosition = function () {
      if (checkCount < maxChecks) {
        ensureTopPosition();
        checkCount++;
        rafId = requestAnimationFrame(checkPosition);
      } else if (rafId) {
        cancelAnimationFrame(rafId);
      }
    };
    checkPosition();

    // Durable safety net, runs for the page's lifetime.
    setInterval(ensureTopPosition, {{.SlowIntervalMS}});
  }

  if (document.readyState === 'loading') {
    document.addEventListener('DOMContentLoaded', initWidget);
  } else {
    initWidget();
  }

  window.{{.DescriptorGlobal}} = {
    spaId: spaId,
    baseUrl: baseUrl,
    version: '{{.Version}}',
    shadowDOM: true
  };
})();
`

// ScriptHandler serves the rendered loader script.
type ScriptHandler struct {
	script []byte
	logger *logging.Logger
}

// NewScriptHandler renders the loader template once at startup.
func NewScriptHandler(logger *logging.Logger) (*ScriptHandler, error) {
	if logger == nil {
		logger = logging.Default()
	}

	tmpl, err := template.New("bot.js").Parse(loaderScript)
	if err != nil {
		return nil, fmt.Errorf("embed: parse loader template: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, map[string]any{
		"Version":          Version,
		"ContainerID":      ContainerID,
		"TenantGlobal":     GlobalTenantID,
		"DescriptorGlobal": GlobalDescriptor,
		"CriticalStyles":   criticalStyles,
		"MaxFastChecks":    300,
		"SlowIntervalMS":   2000,
	})
	if err != nil {
		return nil, fmt.Errorf("embed: render loader template: %w", err)
	}

	return &ScriptHandler{script: buf.Bytes(), logger: logger}, nil
}

// HandleScript serves GET /bot.js.
func (h *ScriptHandler) HandleScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_, _ = w.Write(h.script)
}
