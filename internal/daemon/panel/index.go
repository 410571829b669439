package panel

// indexHTML is the embedded panel page: a searchable entity list with toggle
// buttons, polling the JSON API.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Hearth</title>
<style>
  body { font-family: system-ui, sans-serif; background: #24262d; color: #fff;
         max-width: 460px; margin: 24px auto; padding: 0 12px; }
  input { width: 100%; padding: 8px 10px; border-radius: 6px; box-sizing: border-box;
          border: 1px solid rgba(255,255,255,.3); background: rgba(255,255,255,.12); color: #fff; }
  .row { display: flex; align-items: center; gap: 12px; padding: 10px 12px; margin-top: 8px;
         background: rgba(255,255,255,.12); border-radius: 10px; }
  .row .name { flex: 1; }
  .row .id { color: rgba(255,255,255,.55); font-size: .8em; }
  .row button { padding: 6px 12px; border-radius: 6px; border: 1px solid rgba(255,255,255,.25);
                background: rgba(0,0,0,.35); color: #fff; cursor: pointer; }
  .stale { color: #ffb86b; font-size: .85em; margin-top: 8px; }
  .empty { color: rgba(255,255,255,.5); text-align: center; padding: 24px 12px; }
</style>
</head>
<body>
<input id="search" placeholder="Search entities…" autofocus>
<div id="stale" class="stale" hidden>Showing last known state — hub unreachable.</div>
<div id="list"></div>
<script>
const search = document.getElementById('search');
const list = document.getElementById('list');
const stale = document.getElementById('stale');

async function load() {
  const q = search.value.trim();
  const res = await fetch('/api/v1/entities' + (q ? '?q=' + encodeURIComponent(q) : ''));
  const data = await res.json();
  stale.hidden = !data.stale;
  list.replaceChildren();
  if (!data.entities.length) {
    const empty = document.createElement('div');
    empty.className = 'empty';
    empty.textContent = q ? 'No matching entities.' : 'No entities configured.';
    list.append(empty);
    return;
  }
  for (const e of data.entities) {
    const row = document.createElement('div');
    row.className = 'row';
    const name = document.createElement('div');
    name.className = 'name';
    name.textContent = e.friendly_name + ' — ' + e.state;
    const id = document.createElement('div');
    id.className = 'id';
    id.textContent = e.entity_id;
    name.append(id);
    const btn = document.createElement('button');
    btn.textContent = 'Toggle';
    btn.onclick = async () => {
      await fetch('/api/v1/entities/' + encodeURIComponent(e.entity_id) + '/toggle', {method: 'POST'});
      load();
    };
    row.append(name, btn);
    list.append(row);
  }
}

search.addEventListener('input', load);
setInterval(load, 5000);
load();
</script>
</body>
</html>
`
