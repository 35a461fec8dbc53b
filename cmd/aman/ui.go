package main

// htmlPage is the built-in Arabic web UI served at the root path. It talks
// to the same JSON endpoints the API exposes.
const htmlPage = `<!DOCTYPE html>
<html lang="ar" dir="rtl">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>أمان - حماية ذكية</title>
    <link href="https://fonts.googleapis.com/css2?family=Tajawal:wght@400;500;700;800&display=swap" rel="stylesheet">
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body { font-family: 'Tajawal', sans-serif; background: linear-gradient(180deg, #0f1419 0%, #1a252f 100%); min-height: 100vh; color: #e7e9ea; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; }
        .header { text-align: center; padding: 30px 0; }
        .logo { font-size: 50px; }
        .brand { font-size: 2rem; font-weight: 800; margin: 10px 0; }
        .tagline { color: #71767b; }
        .badge { display: inline-block; margin-top: 10px; padding: 5px 15px; background: rgba(29,155,240,0.2); border-radius: 15px; font-size: 0.8rem; color: #1d9bf0; }
        .stats { display: flex; gap: 15px; justify-content: center; margin: 20px 0; flex-wrap: wrap; }
        .stat { background: rgba(255,255,255,0.05); padding: 15px 25px; border-radius: 10px; text-align: center; }
        .stat-value { font-size: 1.8rem; font-weight: 800; color: #1d9bf0; }
        .stat-label { font-size: 0.75rem; color: #71767b; }
        .stat.danger .stat-value { color: #f4212e; }
        .card { background: #192734; border: 1px solid #38444d; border-radius: 16px; padding: 25px; margin: 20px 0; }
        textarea { width: 100%; height: 120px; padding: 15px; border: 1px solid #38444d; border-radius: 12px; background: #0f1419; color: #e7e9ea; font-family: 'Tajawal'; font-size: 1rem; resize: none; margin-bottom: 15px; }
        textarea:focus { outline: none; border-color: #1d9bf0; }
        .btn { width: 100%; padding: 15px; border: none; border-radius: 12px; background: linear-gradient(90deg, #1d9bf0, #00d4aa); color: #fff; font-size: 1.1rem; font-weight: 700; cursor: pointer; }
        .btn:hover { opacity: 0.9; }
        .examples { margin-top: 15px; }
        .examples-title { font-size: 0.85rem; color: #71767b; margin-bottom: 10px; }
        .examples-grid { display: flex; gap: 8px; flex-wrap: wrap; }
        .ex-btn { padding: 8px 12px; background: rgba(255,255,255,0.05); border: 1px solid #38444d; border-radius: 8px; color: #e7e9ea; cursor: pointer; font-size: 0.8rem; }
        .ex-btn:hover { border-color: #1d9bf0; }
        .ex-btn.danger { border-color: rgba(244,33,46,0.3); color: #f4212e; }
        .loading { display: none; text-align: center; padding: 30px; }
        .spinner { width: 40px; height: 40px; border: 4px solid #38444d; border-top-color: #1d9bf0; border-radius: 50%; animation: spin 0.8s linear infinite; margin: 0 auto 15px; }
        @keyframes spin { to { transform: rotate(360deg); } }
        .result { display: none; }
        .result-card { border-radius: 16px; padding: 25px; border: 2px solid; margin-bottom: 15px; }
        .result-card.danger { background: linear-gradient(135deg, rgba(244,33,46,0.15) 0%, #1a252f 100%); border-color: #f4212e; }
        .result-card.warning { background: linear-gradient(135deg, rgba(255,212,0,0.15) 0%, #1a252f 100%); border-color: #ffd400; }
        .result-card.safe { background: linear-gradient(135deg, rgba(0,186,124,0.15) 0%, #1a252f 100%); border-color: #00ba7c; }
        .result-header { display: flex; align-items: center; gap: 15px; margin-bottom: 20px; }
        .result-icon { font-size: 40px; }
        .result-title { font-size: 1.3rem; font-weight: 700; }
        .result-card.danger .result-title { color: #f4212e; }
        .result-card.warning .result-title { color: #ffd400; }
        .result-card.safe .result-title { color: #00ba7c; }
        .score-row { display: flex; align-items: center; gap: 20px; margin-bottom: 20px; }
        .score-circle { width: 70px; height: 70px; border-radius: 50%; display: flex; align-items: center; justify-content: center; font-size: 1.3rem; font-weight: 800; background: rgba(0,0,0,0.3); }
        .result-card.danger .score-circle { border: 3px solid #f4212e; color: #f4212e; }
        .result-card.warning .score-circle { border: 3px solid #ffd400; color: #ffd400; }
        .result-card.safe .score-circle { border: 3px solid #00ba7c; color: #00ba7c; }
        .threat-badge { padding: 6px 12px; border-radius: 15px; font-size: 0.85rem; background: rgba(0,0,0,0.3); }
        .section-title { font-size: 0.9rem; font-weight: 600; margin-bottom: 10px; color: #a8b3bd; }
        .flag-item { display: flex; gap: 10px; padding: 10px; background: rgba(0,0,0,0.2); border-radius: 8px; margin-bottom: 6px; }
        .flag-icon { font-size: 1.2rem; }
        .flag-title { font-weight: 600; }
        .flag-desc { font-size: 0.8rem; color: #71767b; }
        .flag-item.critical { border-right: 3px solid #f4212e; }
        .flag-item.high { border-right: 3px solid #ffd400; }
        .action-item { display: flex; gap: 10px; padding: 10px; background: rgba(29,155,240,0.1); border: 1px solid rgba(29,155,240,0.2); border-radius: 8px; margin-bottom: 6px; }
        .action-text { font-weight: 600; color: #1d9bf0; }
        .action-desc { font-size: 0.75rem; color: #71767b; }
        .advice-box { background: rgba(29,155,240,0.1); border: 1px solid rgba(29,155,240,0.2); border-radius: 10px; padding: 12px; margin-top: 15px; }
        .advice-title { font-weight: 600; color: #1d9bf0; font-size: 0.85rem; }
        .advice-text { color: #a8b3bd; font-size: 0.9rem; }
        .reset-btn { width: 100%; padding: 12px; background: transparent; border: 1px solid #38444d; border-radius: 10px; color: #71767b; cursor: pointer; }
        .reset-btn:hover { border-color: #1d9bf0; color: #1d9bf0; }
        .footer { text-align: center; padding: 30px 0; color: #536471; font-size: 0.8rem; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <div class="logo">🛡️</div>
            <div class="brand">أمان</div>
            <div class="tagline">نظام ذكي يحمي الإنسان من الاحتيال</div>
            <div class="badge">🧠 مدعوم بالذكاء الاصطناعي</div>
        </div>
        <div class="stats">
            <div class="stat"><div class="stat-value" id="total">0</div><div class="stat-label">تم تحليله</div></div>
            <div class="stat danger"><div class="stat-value" id="threats">0</div><div class="stat-label">تهديد</div></div>
            <div class="stat"><div class="stat-value" id="rate">0%</div><div class="stat-label">نسبة الحماية</div></div>
            <div class="stat" style="background:rgba(0,212,170,0.1);"><div class="stat-value" id="learning" style="color:#00d4aa;">0/20</div><div class="stat-label">🧠 تعلم تلقائي</div></div>
        </div>
        <div class="card" id="inputCard">
            <textarea id="msg" placeholder="الصق الإيميل المشبوه هنا..."></textarea>
            <button class="btn" onclick="analyze()">🔍 تحليل</button>
            <div class="examples">
                <div class="examples-title">🎯 أمثلة:</div>
                <div class="examples-grid">
                    <button class="ex-btn danger" onclick="setEx(1)">🏦 بنك</button>
                    <button class="ex-btn danger" onclick="setEx(2)">🎁 جائزة</button>
                    <button class="ex-btn danger" onclick="setEx(3)">👤 صديق</button>
                    <button class="ex-btn" onclick="setEx(4)">✅ آمن</button>
                </div>
            </div>
        </div>
        <div class="loading" id="loading"><div class="spinner"></div><p>جاري التحليل...</p></div>
        <div class="result" id="result">
            <div class="result-card" id="resultCard">
                <div class="result-header"><span class="result-icon" id="resIcon">🚨</span><div><div class="result-title" id="resTitle">تحذير</div><div style="color:#71767b;font-size:0.85rem;" id="resSub">تم اكتشاف تهديد</div></div></div>
                <div class="score-row"><div class="score-circle" id="score">85%</div><div><div style="color:#71767b;font-size:0.75rem;">نوع التهديد</div><div class="threat-badge" id="threat">-</div></div></div>
                <div id="flagsDiv"><div class="section-title">🚩 لماذا هذا خطر؟</div><div id="flags"></div></div>
                <div style="margin-top:15px;"><div class="section-title">🛡️ ماذا أفعل؟</div><div id="actions"></div></div>
                <div class="advice-box"><div class="advice-title">💡 نصيحة</div><div class="advice-text" id="advice">-</div></div>
                <div id="linksDiv" style="display:none;margin-top:15px;"><div class="section-title">🔗 الروابط المكتشفة</div><div id="links"></div></div>
            </div>
            <button class="reset-btn" onclick="reset()">↩️ تحليل آخر</button>
        </div>
        <div class="footer">أمان - نحوّل الموظف من نقطة ضعف إلى خط دفاع</div>
    </div>
    <script>
        const ex = {
            1: "تم إيقاف بطاقتك البنكية، حدث بياناتك فوراً: bank-update.xyz",
            2: "مبروك! ربحت 50,000 ريال، أرسل رقم بطاقتك فوراً",
            3: "أنا خويك من المدرسة، محتاج 1000 ريال ضروري",
            4: "تذكير: اجتماع الفريق غداً الساعة 10 صباحاً"
        };
        function setEx(n) { document.getElementById('msg').value = ex[n]; }
        function reset() { document.getElementById('inputCard').style.display='block'; document.getElementById('result').style.display='none'; document.getElementById('msg').value=''; }
        async function loadStats() {
            try {
                const r = await fetch('/stats');
                const d = await r.json();
                document.getElementById('total').textContent = d.total_analyzed;
                document.getElementById('threats').textContent = d.threats_blocked;
                document.getElementById('rate').textContent = d.protection_rate + '%';
                const lr = await fetch('/learning/status');
                const ld = await lr.json();
                document.getElementById('learning').textContent = ld.progress;
            } catch(e) {}
        }
        loadStats();
        async function analyze() {
            const msg = document.getElementById('msg').value.trim();
            if (!msg) { alert('الصق الإيميل أولاً'); return; }
            document.getElementById('inputCard').style.display = 'none';
            document.getElementById('loading').style.display = 'block';
            try {
                const r = await fetch('/analyze', { method: 'POST', headers: {'Content-Type': 'application/json'}, body: JSON.stringify({text: msg}) });
                const d = await r.json();
                showResult(d);
                loadStats();
            } catch(e) { alert('خطأ'); reset(); }
            document.getElementById('loading').style.display = 'none';
        }
        function showResult(d) {
            const s = d.risk_score || 0;
            const lv = s >= 70 ? 'danger' : s >= 40 ? 'warning' : 'safe';
            document.getElementById('resultCard').className = 'result-card ' + lv;
            document.getElementById('resIcon').textContent = s >= 70 ? '🚨' : s >= 40 ? '⚠️' : '✅';
            document.getElementById('resTitle').textContent = s >= 70 ? 'تحذير - خطر عالي' : s >= 40 ? 'مشبوه' : 'آمن';
            document.getElementById('resSub').textContent = s >= 70 ? 'لا تتفاعل!' : s >= 40 ? 'توخى الحذر' : 'لم يُكتشف تهديد';
            document.getElementById('score').textContent = s + '%';
            document.getElementById('threat').textContent = d.threat_type || '-';
            document.getElementById('advice').textContent = d.advice || '-';
            const fg = document.getElementById('flags');
            const fd = document.getElementById('flagsDiv');
            if (d.flags && d.flags.length > 0) {
                fg.innerHTML = d.flags.map(f => '<div class="flag-item '+f.severity+'"><span class="flag-icon">'+f.icon+'</span><div><div class="flag-title">'+f.title+'</div><div class="flag-desc">'+f.description+'</div></div></div>').join('');
                fd.style.display = 'block';
            } else { fd.style.display = 'none'; }
            const ac = document.getElementById('actions');
            if (d.actions) { ac.innerHTML = d.actions.map(a => '<div class="action-item"><span>'+a.icon+'</span><div><div class="action-text">'+a.action+'</div><div class="action-desc">'+a.description+'</div></div></div>').join(''); }
            const lk = document.getElementById('links');
            const ld = document.getElementById('linksDiv');
            if (d.links && d.links.total > 0) {
                lk.innerHTML = d.links.details.map(l => {
                    const lv = l.risk_score >= 70 ? 'critical' : l.risk_score >= 40 ? 'high' : '';
                    const ic = l.risk_score >= 70 ? '🚨' : l.risk_score >= 40 ? '⚠️' : '✅';
                    const fields = l.fields_detected && l.fields_detected.length > 0
                        ? '<div style="font-size:10px;color:#f4212e;margin-top:3px;">يطلب: ' + l.fields_detected.join('، ') + '</div>'
                        : '';
                    return '<div class="flag-item '+lv+'"><span class="flag-icon">'+ic+'</span><div><div class="flag-title" style="font-size:11px;word-break:break-all;">'+l.domain+'</div><div class="flag-desc">'+l.content_summary+'</div>'+fields+'</div></div>';
                }).join('');
                ld.style.display = 'block';
            } else { ld.style.display = 'none'; }
            document.getElementById('result').style.display = 'block';
        }
    </script>
</body>
</html>
`
