package ai

import (
	"fmt"
	"html"
	"time"

	"siteforge_server/internal/types"
)

// FallbackArtifact builds the deterministic fixed-structure site used
// whenever the model cannot supply a usable field: navigation, a hero
// section with the description embedded, a feature grid and a footer.
// The only inputs are the description text and a generation timestamp,
// which salts element identifiers so repeated calls stay distinct.
func FallbackArtifact(description string) types.Artifact {
	token := time.Now().Unix()
	return types.Artifact{
		HTML:           fallbackHTML(description, token),
		CSS:            fallbackCSS(),
		JS:             fallbackJS(token),
		SummaryMessage: fmt.Sprintf("I built a starter site for %q. The AI designer is currently unavailable, so this uses our standard template; try again later for a fully custom design.", description),
	}
}

func fallbackHTML(description string, token int64) string {
	escaped := html.EscapeString(description)
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>%s</title>
  <link rel="stylesheet" href="styles.css">
</head>
<body id="site-%d">
  <nav class="navbar">
    <div class="nav-brand">YourSite</div>
    <ul class="nav-links">
      <li><a href="#hero">Home</a></li>
      <li><a href="#features">Features</a></li>
      <li><a href="#contact">Contact</a></li>
    </ul>
    <button class="nav-toggle" id="nav-toggle-%d" aria-label="Menu">&#9776;</button>
  </nav>

  <header class="hero" id="hero">
    <h1>Welcome</h1>
    <p class="hero-subtitle">%s</p>
    <a href="#features" class="cta-button">Get Started</a>
  </header>

  <section class="features" id="features">
    <h2>What We Offer</h2>
    <div class="feature-grid">
      <div class="feature-card">
        <h3>Fast</h3>
        <p>Built for speed with a lightweight, dependency-free stack.</p>
      </div>
      <div class="feature-card">
        <h3>Responsive</h3>
        <p>Looks great on every screen, from phones to desktops.</p>
      </div>
      <div class="feature-card">
        <h3>Simple</h3>
        <p>Clean structure that is easy to extend and customize.</p>
      </div>
    </div>
  </section>

  <footer class="footer" id="contact">
    <p>&copy; 2025 YourSite. All rights reserved.</p>
  </footer>

  <script src="script.js"></script>
</body>
</html>
`, escaped, token, token, escaped)
}

func fallbackCSS() string {
	return `* { margin: 0; padding: 0; box-sizing: border-box; }

body {
  font-family: 'Inter', -apple-system, BlinkMacSystemFont, sans-serif;
  background: #F9FAFB;
  color: #1f2937;
  line-height: 1.6;
}

.navbar {
  display: flex;
  align-items: center;
  justify-content: space-between;
  padding: 1rem 2rem;
  background: #ffffff;
  box-shadow: 0 1px 3px rgba(0, 0, 0, 0.08);
  position: sticky;
  top: 0;
  z-index: 10;
}

.nav-brand { font-weight: 700; font-size: 1.25rem; color: #1A73E8; }

.nav-links { display: flex; gap: 1.5rem; list-style: none; }

.nav-links a { text-decoration: none; color: #1f2937; }
.nav-links a:hover { color: #1A73E8; }

.nav-toggle { display: none; background: none; border: none; font-size: 1.5rem; cursor: pointer; }

.hero {
  text-align: center;
  padding: 6rem 2rem;
  background: linear-gradient(135deg, #1A73E8 0%, #6EA8FE 100%);
  color: #ffffff;
}

.hero h1 { font-size: 2.75rem; margin-bottom: 1rem; }

.hero-subtitle { font-size: 1.2rem; max-width: 640px; margin: 0 auto 2rem; }

.cta-button {
  display: inline-block;
  padding: 0.85rem 2rem;
  background: #FF6F61;
  color: #ffffff;
  border-radius: 9999px;
  text-decoration: none;
  font-weight: 600;
}
.cta-button:hover { opacity: 0.9; }

.features { padding: 4rem 2rem; text-align: center; }

.features h2 { margin-bottom: 2rem; font-size: 2rem; }

.feature-grid {
  display: grid;
  grid-template-columns: repeat(auto-fit, minmax(240px, 1fr));
  gap: 1.5rem;
  max-width: 960px;
  margin: 0 auto;
}

.feature-card {
  background: #ffffff;
  padding: 2rem 1.5rem;
  border-radius: 12px;
  box-shadow: 0 2px 8px rgba(0, 0, 0, 0.06);
}

.feature-card h3 { color: #1A73E8; margin-bottom: 0.5rem; }

.footer {
  text-align: center;
  padding: 2rem;
  background: #1f2937;
  color: #9ca3af;
}

@media (max-width: 640px) {
  .nav-links { display: none; }
  .nav-links.open { display: flex; flex-direction: column; position: absolute; top: 100%; left: 0; right: 0; background: #ffffff; padding: 1rem 2rem; }
  .nav-toggle { display: block; }
  .hero h1 { font-size: 2rem; }
}
`
}

func fallbackJS(token int64) string {
	return fmt.Sprintf(`// Generated %d
(function () {
  var toggle = document.getElementById('nav-toggle-%d');
  var links = document.querySelector('.nav-links');
  if (toggle && links) {
    toggle.addEventListener('click', function () {
      links.classList.toggle('open');
    });
  }

  document.querySelectorAll('a[href^="#"]').forEach(function (anchor) {
    anchor.addEventListener('click', function (e) {
      var target = document.querySelector(anchor.getAttribute('href'));
      if (target) {
        e.preventDefault();
        target.scrollIntoView({ behavior: 'smooth' });
      }
    });
  });
})();
`, token, token)
}
